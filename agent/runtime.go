package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/sanitize"
)

// MinRetryBudget is the floor for the retry budget regardless of pool size.
const MinRetryBudget = 3

// InvokerFactory builds a model invoker bound to a specific model id. It is
// called at construction and again after every rotation, so implementations
// must be cheap or share an underlying client.
type InvokerFactory func(modelID string) (model.Model, error)

// Options configure a Runtime.
type Options struct {
	// Pool supplies candidate model ids. Required.
	Pool *CandidatePool
	// Factory builds invokers for pool candidates. Required.
	Factory InvokerFactory
	// Persona supplies the default system instruction and temperature for
	// requests that do not set their own.
	Persona core.Persona
	// CanRotate enables quota-driven pool rotation. Only API-key backends
	// with more than one candidate should enable this; fixed-model backends
	// (Vertex) fall through to plain backoff.
	CanRotate bool
	// MaxRetries overrides the computed retry budget when positive.
	MaxRetries int
	// BaseBackoff is the initial backoff delay, doubled per backoff retry.
	BaseBackoff time.Duration
	// RotatePause is the short settle delay after a rotation; rotation does
	// not consume backoff.
	RotatePause time.Duration
	// RedactMode selects the output redaction aggressiveness.
	RedactMode sanitize.Mode
	Logger     logging.Logger
}

// Runtime executes model calls with quota-aware retry, rotation and
// mandatory output redaction. A Runtime whose initial invoker could not be
// built is offline and fails every call fast.
type Runtime struct {
	pool        *CandidatePool
	factory     InvokerFactory
	persona     core.Persona
	canRotate   bool
	maxRetries  int
	baseBackoff time.Duration
	rotatePause time.Duration
	redactMode  sanitize.Mode
	logger      logging.Logger

	invoker model.Model
	initErr error
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRuntime creates a Runtime bound to the pool's current front candidate.
// Construction never fails: if no invoker can be built the runtime comes up
// offline and reports that on every call instead of panicking mid-pipeline.
func NewRuntime(optFns ...func(o *Options)) *Runtime {
	opts := Options{
		BaseBackoff: 5 * time.Second,
		RotatePause: 2 * time.Second,
		RedactMode:  sanitize.ModeStrict,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Runtime{
		pool:        opts.Pool,
		factory:     opts.Factory,
		persona:     opts.Persona,
		canRotate:   opts.CanRotate,
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.BaseBackoff,
		rotatePause: opts.RotatePause,
		redactMode:  opts.RedactMode,
		logger:      opts.Logger,
		sleep:       sleepCtx,
	}

	switch {
	case r.pool == nil || r.factory == nil:
		r.initErr = llmerrors.New(llmerrors.ErrorTypeOffline, "runtime not configured: pool and factory are required")
	default:
		active, _, ok := r.pool.Active()
		if !ok {
			r.initErr = llmerrors.New(llmerrors.ErrorTypeOffline, "runtime offline: candidate pool is empty")
			break
		}
		invoker, err := r.factory(active)
		if err != nil {
			r.initErr = llmerrors.Wrap(llmerrors.ErrorTypeOffline, err,
				fmt.Sprintf("runtime offline: failed to initialize model %q", active))
			break
		}
		r.invoker = invoker
	}

	if r.initErr != nil {
		r.logger.Error("Runtime initialization failed", "error", r.initErr.Error())
	}
	return r
}

// Offline reports whether the runtime failed to initialize.
func (r *Runtime) Offline() bool { return r.initErr != nil }

// ModelID returns the id of the currently bound model, or empty when offline.
func (r *Runtime) ModelID() string {
	if r.invoker == nil {
		return ""
	}
	return r.invoker.Info().Name
}

// Persona returns the persona this runtime speaks as.
func (r *Runtime) Persona() core.Persona { return r.persona }

// retryBudget computes the attempt budget: at least MinRetryBudget, and
// enough to try every pool candidate plus a margin.
func (r *Runtime) retryBudget() int {
	if r.maxRetries > 0 {
		return r.maxRetries
	}
	budget := MinRetryBudget
	if r.pool != nil && r.pool.Size()+MinRetryBudget > budget {
		budget = r.pool.Size() + MinRetryBudget
	}
	return budget
}

// Generate executes one model call under the retry policy. Every successful
// response is redacted before it is returned; there is no bypass.
func (r *Runtime) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	if r.initErr != nil {
		return nil, r.initErr
	}

	r.applyPersona(&req)

	budget := r.retryBudget()
	backoff := r.baseBackoff
	tried := []string{r.ModelID()}
	var lastErr error

	for attempt := 1; attempt <= budget; attempt++ {
		start := time.Now()
		resp, err := r.invoker.Generate(ctx, req)
		if err == nil {
			r.logCall(start, true, nil)
			resp.Text = sanitize.RedactText(resp.Text, r.redactMode)
			return resp, nil
		}
		r.logCall(start, false, err)
		lastErr = err

		cls := llmerrors.Classify(err, r.invoker.Info().Provider, r.ModelID())
		if !cls.IsRetryable() {
			return nil, cls
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == budget {
			break
		}

		// Any retryable failure rotates: quota errors and transient server
		// errors both get a fresh candidate before backoff is spent.
		if cls.IsRetryable() && r.canRotate && r.pool.Size() > 1 {
			if next, ok := r.rotate(); ok {
				tried = appendUnique(tried, next)
				if err := r.sleep(ctx, r.rotatePause); err != nil {
					return nil, err
				}
				continue // immediate retry on the next candidate, no backoff
			}
		}

		r.logger.Warn("Retrying model call after backoff",
			"model", r.ModelID(), "attempt", attempt, "backoff", backoff.String())
		if err := r.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}

	return nil, llmerrors.Wrap(llmerrors.TypeOf(lastErr), lastErr,
		fmt.Sprintf("all %d attempts exhausted; models tried: %s", budget, strings.Join(tried, ", ")))
}

// rotate advances the shared pool and rebinds the invoker to the new front.
// A factory failure leaves the previous invoker in place so backoff can take
// over.
func (r *Runtime) rotate() (string, bool) {
	_, version, ok := r.pool.Active()
	if !ok {
		return "", false
	}
	next, ok := r.pool.Rotate(version)
	if !ok || next == r.ModelID() {
		return next, ok && next != ""
	}
	invoker, err := r.factory(next)
	if err != nil {
		r.logger.Error("Failed to bind rotated model, keeping current",
			"model", next, "error", err.Error())
		return "", false
	}
	r.logger.Warn("Rotated model candidate", "from", r.ModelID(), "to", next)
	r.invoker = invoker
	return next, true
}

// applyPersona fills request defaults from the runtime persona. A zero
// persona supplies nothing, leaving provider defaults in place.
func (r *Runtime) applyPersona(req *model.Request) {
	if r.persona == (core.Persona{}) {
		return
	}
	if req.System == "" {
		req.System = r.persona.SystemInstruction
	}
	if req.Temperature == nil {
		t := r.persona.Temperature
		req.Temperature = &t
	}
}

func (r *Runtime) logCall(start time.Time, success bool, err error) {
	if pl, ok := r.logger.(*logging.PipelineLogger); ok {
		pl.LogModelCall(r.invoker.Info().Provider, r.ModelID(), time.Since(start), success, err)
		return
	}
	if !success {
		r.logger.Error("Model call failed", "model", r.ModelID(), "error", err.Error())
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
