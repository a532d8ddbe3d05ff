package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every PDF in a directory once and append the records to the dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newProcessor(ctx, a.cfg, a.logger)
			if err != nil {
				a.logger.Error("startup failed", "error", err)
				return err
			}
			defer w.Close()

			sum, err := w.proc.ProcessDirectory(ctx, input, output)
			if err != nil {
				a.logger.Error("run failed", "error", err)
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents=%d merged=%d skipped=%d records=%d\n", sum.Discovered, sum.Merged, sum.Skipped, sum.Records)
			if sum.OutputCSV != "" {
				fmt.Fprintf(out, "csv=%s\n", sum.OutputCSV)
			}
			if sum.OutputXLSX != "" {
				fmt.Fprintf(out, "xlsx=%s\n", sum.OutputXLSX)
			}
			for _, o := range sum.Outcomes {
				if o.Skipped() {
					fmt.Fprintf(out, "skipped %s: %v\n", o.Document.Name, o.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "directory containing the PDFs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory receiving the dataset")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
