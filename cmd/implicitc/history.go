package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/funvibe/implicits/internal/report"
)

func createHistoryCmd() *cobra.Command {
	var showBindings bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded in a report database",
		Long: `List the runs recorded with --report.

Examples:
  implicitc history --report runs.db
  implicitc history --report runs.db --bindings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportPath == "" {
				return errors.New("--report is required")
			}
			store, err := report.Open(reportPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tUNIT\tRESOLVED\tFAILED\tDIAGNOSTICS")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Unit, r.Resolved, r.Failed, r.Diagnostics)
				if !showBindings {
					continue
				}
				bindings, err := store.Bindings(ctx, r.ID)
				if err != nil {
					return err
				}
				for _, b := range bindings {
					outcome := b.Candidate
					if !b.Resolved() {
						outcome = "unresolved"
					}
					fmt.Fprintf(w, "  %s\t=> %s\t\t\t\t\n", b.Key, outcome)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&showBindings, "bindings", false, "Also list the bindings of each run")
	return cmd
}
