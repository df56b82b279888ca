package main

import (
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aiinsight/internal/httpserver"
	"aiinsight/internal/insight"
)

// writeTimeoutSlack запас поверх таймаута провайдера, чтобы успеть отдать 500.
const writeTimeoutSlack = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR and PORT")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, addr string) error {
	a, err := newApp(cmd.Context(), opts.envFile, os.Stdout)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.cfg.Addr()
	}

	var static fs.FS
	if a.cfg.StaticEnabled() {
		static = os.DirFS(a.cfg.StaticDir)
		a.logger.Info("serving static files", slog.String("dir", a.cfg.StaticDir))
	}

	handler := insight.NewHandler(insight.HandlerDeps{
		Service:      a.service,
		Logger:       a.logger,
		MaxBodyBytes: a.cfg.MaxBodyBytes,
	})

	server := httpserver.NewServer(httpserver.ServerConfig{
		Addr:         addr,
		WriteTimeout: a.cfg.RequestTimeout + writeTimeoutSlack,
	}, httpserver.RouterDeps{
		Logger:         a.logger,
		InsightHandler: handler,
		CORSOrigins:    a.cfg.CORSOrigins,
		Static:         static,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		a.logger.Error("server failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
