package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/tutorgen/internal/codecheck"
	"github.com/dusk-indust/tutorgen/internal/httpapi"
	"github.com/dusk-indust/tutorgen/internal/mcptools"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/runstore"
)

func newServeMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the tutorial tools over MCP (stdio by default)",
		Long: `serve-mcp exposes generate_tutorial, classify_topic and list_tutorials as
MCP tools. With --listen the server speaks streamable HTTP instead of stdio.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.newServices()
			if err != nil {
				return err
			}
			server := mcptools.NewServer(mcptools.NewTutorService(svc.pipeline, svc.gate, mcptools.Options{
				OutputDir: a.cfg.Output.Dir,
				Formats:   a.cfg.Output.Formats,
				Logger:    a.log,
			}))

			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				a.log.Info("mcp server listening", "addr", addr)
				return mcptools.RunHTTP(cmd.Context(), server, addr)
			}
			return mcptools.RunStdio(cmd.Context(), server)
		},
	}
	cmd.Flags().String("listen", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

func newServeHTTPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.newServices()
			if err != nil {
				return err
			}
			maxJobs, _ := cmd.Flags().GetInt("max-jobs")
			if a.cfg.Log.Mode == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			h := httpapi.NewHandler(svc.pipeline, httpapi.Options{
				OutputDir: a.cfg.Output.Dir,
				Formats:   a.cfg.Output.Formats,
				Detector:  orchestrator.NewDefaultDetector(svc.backend, codecheck.Available, a.log),
				Runs:      runstore.New(maxJobs),
				Logger:    a.log,
			})
			return httpapi.Serve(cmd.Context(), a.cfg.Server.HTTPAddr, httpapi.NewRouter(h), a.log)
		},
	}
	cmd.Flags().Int("max-jobs", runstore.DefaultLimit, "background runs kept in memory for GET /v1/runs")
	return cmd
}
