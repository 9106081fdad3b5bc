package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/tutorgen/internal/export"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a tutorial for a topic",
		Long: `Generate runs the full pipeline for one topic. Progress is printed to stderr
and the written export paths to stdout.

Exit status is 0 when the tutorial was produced, 2 when the topic was
rejected as out of scope and 1 on any failure.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			printDoc, _ := cmd.Flags().GetBool("print")
			noWrite, _ := cmd.Flags().GetBool("no-write")

			svc, err := a.newServices()
			if err != nil {
				return err
			}

			reporter := orchestrator.NewProgressReporter()
			printed := make(chan struct{})
			go func() {
				defer close(printed)
				for ev := range reporter.Subscribe() {
					fmt.Fprintln(a.stderr, orchestrator.FormatProgress(ev))
				}
			}()

			res, err := svc.pipeline.Run(cmd.Context(), topic, reporter.Emit)
			reporter.Close()
			<-printed
			if err != nil {
				return err
			}

			if res.State == orchestrator.StateRejected {
				msg := "topic rejected"
				if res.Decision != nil {
					msg = fmt.Sprintf("topic rejected (confidence %.2f): %s", res.Decision.Confidence, res.Decision.Reason)
				}
				return &exitError{code: exitRejected, msg: msg}
			}

			for _, w := range res.Warnings {
				fmt.Fprintf(a.stderr, "warning: %s\n", w)
			}
			if printDoc {
				fmt.Fprint(a.stdout, export.Markdown(*res.Document))
			}
			if noWrite {
				return nil
			}

			paths, err := export.Write(a.cfg.Output.Dir, res, a.cfg.Output.Formats, time.Now())
			for _, p := range paths {
				fmt.Fprintln(a.stdout, p)
			}
			return err
		},
	}
	cmd.Flags().Bool("print", false, "print the Markdown tutorial to stdout")
	cmd.Flags().Bool("no-write", false, "do not write export files")
	return cmd
}
