package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <topic>",
		Short: "Run only the scope gate and print its decision as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, err := tutorial.NewTopic(strings.Join(args, " "))
			if err != nil {
				return err
			}
			svc, err := a.newServices()
			if err != nil {
				return err
			}
			decision, err := svc.gate.Classify(cmd.Context(), topic)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(decision)
		},
	}
}
