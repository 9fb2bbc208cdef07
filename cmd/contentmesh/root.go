package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/contentmesh/contentmesh/config"
	"github.com/contentmesh/contentmesh/logging"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "contentmesh",
		Short: "Multi-stage technical content generation pipeline",
		Long: `contentmesh selects a topic, builds a sanitized knowledge dossier,
synthesizes a technical article and audits every claim against the
dossier before anything is published.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default contentmesh.yaml in . or /etc/contentmesh)")

	cmd.AddCommand(
		newRunCmd(&cfgFile),
		newServeCmd(&cfgFile),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads configuration and builds the process logger from it.
func loadConfig(cfgFile string) (*config.Config, *logging.PipelineLogger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  parseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})
	return cfg, logger, nil
}

func parseLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
