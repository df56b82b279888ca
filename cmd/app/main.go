package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aiinsight/internal/config"
	"aiinsight/internal/insight"
	"aiinsight/internal/llm"
	"aiinsight/internal/transport"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "aiinsight",
		Short:         "AI insight proxy: prompt in, summary and anomalies out",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, "")
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file (missing file is ignored)")

	root.AddCommand(newServeCmd(opts), newAskCmd(opts))
	return root
}

// app общие для команд зависимости.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *insight.Service
}

func newApp(ctx context.Context, envFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(logOut, cfg.LogLevel)

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout)
	generator, err := llm.NewGenerator(ctx, cfg.Provider, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s provider: %w", cfg.Provider.Name, err)
	}

	service, err := insight.NewService(generator)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, service: service}, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}
