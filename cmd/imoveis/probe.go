package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE.pdf",
		Short: "Print the text and image signals and the strategy picked for one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober, _, _ := newProber(a.cfg, a.logger)
			res := prober.Probe(context.Background(), args[0])

			out := map[string]any{
				"file":        args[0],
				"type":        res.Type,
				"has_text":    res.HasText,
				"has_images":  res.HasImages,
				"text_length": res.TextLength,
				"pages":       res.Pages,
			}
			if res.Cause != nil {
				out["cause"] = res.Cause.Error()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
