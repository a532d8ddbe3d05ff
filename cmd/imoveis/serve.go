package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/santiagocaneppa/Interview-project/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var watch, output string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the processing API and gRPC health, optionally watching a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newProcessor(ctx, a.cfg, a.logger)
			if err != nil {
				a.logger.Error("startup failed", "error", err)
				return err
			}
			defer w.Close()

			lis, err := net.Listen("tcp", a.cfg.Server.GRPCHealthAddr)
			if err != nil {
				a.logger.Error("grpc listen failed", "addr", a.cfg.Server.GRPCHealthAddr, "error", err)
				return err
			}

			router := server.NewRouter(server.NewProcessHandler(w.proc, a.logger), a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.ServeHTTP(gctx, a.cfg.Server.HTTPAddr, router, a.cfg.Server.ShutdownTimeout, a.logger)
			})
			g.Go(func() error {
				return server.ServeHealth(gctx, lis, a.logger, w.healthChecks()...)
			})
			if watch != "" {
				g.Go(func() error {
					return watchDir(gctx, w.proc, watch, output, true, a.cfg, a.logger)
				})
			}

			err = g.Wait()
			a.logger.Info("serve.stopped", "error", err)
			return err
		},
	}
	cmd.Flags().StringVar(&watch, "watch", "", "also watch this directory for new PDFs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "dataset directory for watched PDFs")
	cmd.MarkFlagsRequiredTogether("watch", "output")
	return cmd
}
