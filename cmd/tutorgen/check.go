package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/tutorgen/internal/codecheck"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the configured backend and report optional features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.newBackend()
			if err != nil {
				return err
			}
			r := orchestrator.NewDefaultDetector(b, codecheck.Available, a.log).Detect(cmd.Context())

			fmt.Fprintf(a.stdout, "provider:  %s\n", a.cfg.Backend.Provider)
			if a.cfg.Backend.Model != "" {
				fmt.Fprintf(a.stdout, "model:     %s\n", a.cfg.Backend.Model)
			}
			fmt.Fprintf(a.stdout, "code lint: %s\n", onOff(r.CodeLint && a.cfg.LintEnabled()))
			if !r.Ready() {
				fmt.Fprintf(a.stdout, "backend:   unavailable\n")
				return r.Backend
			}
			fmt.Fprintf(a.stdout, "backend:   ok\n")
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
