package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/santiagocaneppa/Interview-project/internal/async"
	"github.com/santiagocaneppa/Interview-project/internal/common"
	"github.com/santiagocaneppa/Interview-project/internal/ingest"
	"github.com/santiagocaneppa/Interview-project/internal/pipeline"
)

func newWatchCmd(a *app) *cobra.Command {
	var input, output string
	var initial bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process PDFs as they are dropped into a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newProcessor(ctx, a.cfg, a.logger)
			if err != nil {
				a.logger.Error("startup failed", "error", err)
				return err
			}
			defer w.Close()

			return watchDir(ctx, w.proc, input, output, initial, a.cfg, a.logger)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "directory to watch for new PDFs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory receiving the dataset")
	cmd.Flags().BoolVar(&initial, "initial-scan", true, "process PDFs already present at startup")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// watchDir feeds new PDFs to a single-worker queue until ctx is done.
func watchDir(ctx context.Context, proc *pipeline.Processor, input, output string, initial bool, cfg *common.Config, logger *slog.Logger) error {
	if err := pipeline.ValidateDirs(input, output); err != nil {
		return err
	}
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Dir:         input,
		InitialScan: initial,
		Debounce:    cfg.Pipeline.WatchDebounce,
	}, logger)
	if err != nil {
		return err
	}

	queue := async.NewProcessorQueue(func(ctx context.Context, job async.Job) error {
		_, err := proc.ProcessFiles(ctx, []string{job.Path}, output)
		return err
	}, logger, async.WithProcessTimeout(cfg.Pipeline.DocumentTimeout))
	defer queue.Shutdown(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if err := queue.Enqueue(ctx, async.Job{Path: path}); err != nil {
				logger.Warn("watch.enqueue_failed", "path", path, "error", err)
			}
		}
	}
}
