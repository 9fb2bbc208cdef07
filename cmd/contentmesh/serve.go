package main

import (
	"github.com/spf13/cobra"

	"github.com/contentmesh/contentmesh"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if !cfg.HasAnyProviderKey() {
				logger.Warn("No model provider credentials configured; runs will fail fast as offline")
			}

			mesh, err := contentmesh.New(cmd.Context(), cfg, func(o *contentmesh.Options) {
				o.Logger = logger
			})
			if err != nil {
				return err
			}
			return mesh.Server().Run(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
