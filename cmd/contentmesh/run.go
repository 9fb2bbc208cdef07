package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentmesh/contentmesh"
	"github.com/contentmesh/contentmesh/core"
)

func newRunCmd(cfgFile *string) *cobra.Command {
	var topic string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}

			mesh, err := contentmesh.New(cmd.Context(), cfg, func(o *contentmesh.Options) {
				o.Logger = logger
			})
			if err != nil {
				return err
			}

			result, err := mesh.RunPipeline(cmd.Context(), topic)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(result)
			if result.Status == core.StatusError {
				return fmt.Errorf("pipeline run failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "override topic, bypassing market scanning")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full run result as JSON")
	return cmd
}

func printResult(result *core.RunResult) {
	fmt.Printf("Status: %s\n", result.Status)
	if result.Topic != "" {
		fmt.Printf("Topic:  %s\n", result.Topic)
	}
	if result.AuditReport != nil {
		fmt.Printf("Audit:  %s (%.2f%% verified, %d claims)\n",
			result.AuditReport.Status,
			result.AuditReport.VerificationRate,
			result.AuditReport.TotalClaims)
	}
	if result.Reason != "" {
		fmt.Printf("Reason: %s\n", result.Reason)
	}
	if result.Article != nil {
		fmt.Printf("Words:  %d\n", result.Article.Metadata.WordCount)
	}
}
