// Package contentmesh provides a high-level façade over the content pipeline:
// model providers, resilient agent runtimes, structured output contracts, the
// four pipeline stages and artifact persistence. Most applications interact
// with this package by:
//  1. Loading a config.Config (file plus CONTENTMESH_* environment)
//  2. Creating a Mesh via New() (optionally overriding the searcher or store)
//  3. Running the pipeline directly (RunPipeline) or serving it over HTTP
//     (Server)
//
// The façade only wires packages together; every stage remains usable on its
// own for testing and partial deployments.
package contentmesh

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contentmesh/contentmesh/agent"
	"github.com/contentmesh/contentmesh/artifact"
	"github.com/contentmesh/contentmesh/audit"
	"github.com/contentmesh/contentmesh/config"
	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/dossier"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/metrics"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/model/anthropic"
	"github.com/contentmesh/contentmesh/model/gemini"
	"github.com/contentmesh/contentmesh/model/openai"
	"github.com/contentmesh/contentmesh/pipeline"
	"github.com/contentmesh/contentmesh/sanitize"
	"github.com/contentmesh/contentmesh/search"
	"github.com/contentmesh/contentmesh/server"
	"github.com/contentmesh/contentmesh/structured"
	"github.com/contentmesh/contentmesh/synthesis"
	"github.com/contentmesh/contentmesh/topics"
)

// Personas fixed at construction time. Each stage speaks as one of these; the
// system instruction and temperature act as defaults for requests that do not
// set their own.
var (
	scannerPersona = core.Persona{
		Name:              "market-intelligence",
		SystemInstruction: "You are a market intelligence analyst for industrial engineering.",
		Temperature:       0.3,
	}
	writerPersona = core.Persona{
		Name:              "notebook-synthesizer",
		SystemInstruction: "You are a senior engineer writing a world-class technical article.",
		Temperature:       0.5,
	}
	auditorPersona = core.Persona{
		Name:              "technical-auditor",
		SystemInstruction: "You are a rigorous technical auditor.",
		Temperature:       0,
	}
)

// Options configure a Mesh beyond what config.Config carries.
type Options struct {
	// Searcher retrieves raw documents for the dossier stage. Defaults to an
	// empty static searcher; production deployments supply a real backend.
	Searcher search.Searcher
	// Store persists run artifacts. Defaults to a file store rooted at the
	// configured output directory.
	Store artifact.Store
	// Registry collects Prometheus metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
	Logger   logging.Logger
}

// Mesh aggregates the wired pipeline and its HTTP surface.
type Mesh struct {
	cfg          *config.Config
	opts         Options
	registry     *prometheus.Registry
	orchestrator *pipeline.Orchestrator
	scanner      *topics.Scanner
	builder      *dossier.Builder
	synthesizer  *synthesis.Synthesizer
	auditor      *audit.Auditor
}

// New wires a Mesh from configuration. Providers without credentials are
// skipped; a Mesh with no providers still constructs, and its runs fail fast
// with offline errors instead of panicking.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Searcher == nil {
		opts.Searcher = search.NewStaticSearcher()
	}
	if opts.Store == nil {
		opts.Store = artifact.NewFileStore(cfg.Pipeline.OutputDir)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	m := metrics.New(opts.Registry)
	logger := opts.Logger

	scannerGens, err := buildGenerators(ctx, cfg, scannerPersona, logger)
	if err != nil {
		return nil, err
	}
	writerGens, err := buildGenerators(ctx, cfg, writerPersona, logger)
	if err != nil {
		return nil, err
	}
	auditorGens, err := buildGenerators(ctx, cfg, auditorPersona, logger)
	if err != nil {
		return nil, err
	}

	sanitizer := sanitize.NewSanitizer(func(o *sanitize.Options) {
		o.Logger = logger
	})
	killSwitch := sanitize.NewKillSwitch(cfg.Pipeline.DeniedOrgs...)

	scanner := topics.NewScanner(
		structured.NewContract(scannerGens, func(o *structured.Options) { o.Logger = logger }),
		func(o *topics.Options) {
			if len(cfg.Pipeline.FocusAreas) > 0 {
				o.FocusAreas = cfg.Pipeline.FocusAreas
			}
			o.Logger = logger
		})

	builder := dossier.NewBuilder(opts.Searcher, sanitizer, func(o *dossier.Options) {
		if cfg.Pipeline.MaxDocuments > 0 {
			o.MaxDocuments = cfg.Pipeline.MaxDocuments
		}
		o.Logger = logger
	})

	synthesizer := synthesis.NewSynthesizer(
		structured.NewContract(writerGens, func(o *structured.Options) { o.Logger = logger }),
		generatorChain(writerGens),
		func(o *synthesis.Options) {
			o.KillSwitch = killSwitch
			o.Logger = logger
		})

	auditor := audit.NewAuditor(
		structured.NewContract(auditorGens, func(o *structured.Options) { o.Logger = logger }),
		func(o *audit.Options) { o.Logger = logger })

	orchestrator := pipeline.NewOrchestrator(scanner, builder, synthesizer, auditor,
		func(o *pipeline.Options) {
			o.Store = opts.Store
			o.Metrics = m
			o.Logger = logger
		})

	return &Mesh{
		cfg:          cfg,
		opts:         opts,
		registry:     opts.Registry,
		orchestrator: orchestrator,
		scanner:      scanner,
		builder:      builder,
		synthesizer:  synthesizer,
		auditor:      auditor,
	}, nil
}

// RunPipeline executes one full run.
func (m *Mesh) RunPipeline(ctx context.Context, overrideTopic string) (*core.RunResult, error) {
	return m.orchestrator.Run(ctx, overrideTopic)
}

// Orchestrator exposes the wired pipeline orchestrator.
func (m *Mesh) Orchestrator() *pipeline.Orchestrator { return m.orchestrator }

// Server builds the HTTP surface over the wired stages.
func (m *Mesh) Server() *server.Server {
	return server.New(m.orchestrator, m.scanner, m.builder, m.synthesizer, m.auditor,
		func(o *server.Options) {
			o.APIKey = m.cfg.Server.APIKey
			if m.cfg.Server.MetricsEnabled {
				o.Gatherer = m.registry
			}
			o.Logger = m.opts.Logger
		})
}

// buildGenerators assembles the provider fallback chain for one persona in
// the configured preference order. Providers without credentials are skipped;
// the Gemini provider gets a rotating candidate pool on the API-key backend
// and a fixed model on Vertex.
func buildGenerators(ctx context.Context, cfg *config.Config, persona core.Persona, logger logging.Logger) ([]structured.Generator, error) {
	creds := structured.Credentials{
		OpenAIKey:    cfg.Provider.OpenAIKey,
		GoogleKey:    cfg.Provider.GoogleKey,
		AnthropicKey: cfg.Provider.AnthropicKey,
	}
	order := structured.ProviderOrder(cfg.Provider.Preference, creds)
	if cfg.Provider.Vertex.Enabled && !contains(order, "gemini") {
		order = append(order, "gemini")
	}

	var gens []structured.Generator
	for _, provider := range order {
		var rt *agent.Runtime
		switch provider {
		case "openai":
			rt = openaiRuntime(cfg, persona, logger)
		case "gemini":
			var err error
			rt, err = geminiRuntime(ctx, cfg, persona, logger)
			if err != nil {
				logger.Warn("Skipping gemini provider", "error", err.Error())
				continue
			}
		case "anthropic":
			rt = anthropicRuntime(cfg, persona, logger)
		default:
			return nil, fmt.Errorf("unknown provider %q", provider)
		}
		gens = append(gens, rt)
	}
	return gens, nil
}

func openaiRuntime(cfg *config.Config, persona core.Persona, logger logging.Logger) *agent.Runtime {
	pool := agent.NewCandidatePool(cfg.Provider.OpenAIModel)
	return agent.NewRuntime(func(o *agent.Options) {
		o.Pool = pool
		o.Factory = func(modelID string) (model.Model, error) {
			return openai.NewModel(func(mo *openai.Options) {
				mo.Model = modelID
				mo.APIKey = cfg.Provider.OpenAIKey
			}), nil
		}
		o.Persona = persona
		o.Logger = logger
	})
}

// useVertexBackend reports whether Vertex should serve Gemini traffic. The
// API-key catalog backend is primary; Vertex is the fallback when no Google
// key is configured.
func useVertexBackend(cfg *config.Config) bool {
	return cfg.Provider.Vertex.Enabled && cfg.Provider.GoogleKey == ""
}

func geminiRuntime(ctx context.Context, cfg *config.Config, persona core.Persona, logger logging.Logger) (*agent.Runtime, error) {
	vertex := useVertexBackend(cfg)
	base, err := gemini.NewModel(ctx, func(mo *gemini.Options) {
		mo.APIKey = cfg.Provider.GoogleKey
		mo.Vertex = vertex
		mo.Project = cfg.Provider.Vertex.Project
		mo.Location = cfg.Provider.Vertex.Location
		if vertex {
			mo.Model = gemini.DefaultVertexModel
		} else if cfg.Provider.GeminiModel != "" {
			mo.Model = cfg.Provider.GeminiModel
		}
	})
	if err != nil {
		return nil, err
	}

	var candidates []string
	canRotate := false
	if vertex {
		candidates = []string{base.Info().Name}
	} else {
		candidates = gemini.ListCandidates(ctx, base.Client())
		canRotate = len(candidates) > 1
	}

	pool := agent.NewCandidatePool(candidates...)
	return agent.NewRuntime(func(o *agent.Options) {
		o.Pool = pool
		o.Factory = func(modelID string) (model.Model, error) {
			return base.WithModel(modelID), nil
		}
		o.Persona = persona
		o.CanRotate = canRotate
		o.Logger = logger
	}), nil
}

func anthropicRuntime(cfg *config.Config, persona core.Persona, logger logging.Logger) *agent.Runtime {
	pool := agent.NewCandidatePool(cfg.Provider.AnthropicModel)
	return agent.NewRuntime(func(o *agent.Options) {
		o.Pool = pool
		o.Factory = func(modelID string) (model.Model, error) {
			return anthropic.NewModel(func(mo *anthropic.Options) {
				mo.Model = anthropicsdk.Model(modelID)
				mo.APIKey = cfg.Provider.AnthropicKey
			}), nil
		}
		o.Persona = persona
		o.Logger = logger
	})
}

// chain tries each generator in order, falling through on error. It backs the
// prose writer so section generation gets the same provider fallback as the
// structured contracts.
type chain struct {
	gens []structured.Generator
}

func generatorChain(gens []structured.Generator) structured.Generator {
	return &chain{gens: gens}
}

func (c *chain) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	if len(c.gens) == 0 {
		return nil, fmt.Errorf("no model providers configured")
	}
	var lastErr error
	for _, g := range c.gens {
		resp, err := g.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

var _ structured.Generator = (*chain)(nil)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
