package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/santiagocaneppa/Interview-project/internal/common"
)

type app struct {
	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "imoveis",
		Short:         "Extract real-estate unit listings from PDF price tables into one dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfg = common.LoadConfig()
			a.logger = newLogger(a.cfg.Log)
			slog.SetDefault(a.logger)
		},
	}
	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newProbeCmd(a),
	)
	root.SetOut(os.Stdout)
	return root
}

func newLogger(cfg common.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	// Text output drops the timestamp; the event name and attributes carry the rest.
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.Attr{}
		}
		return a
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
