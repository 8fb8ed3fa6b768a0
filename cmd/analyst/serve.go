package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"equity-analyst/internal/logger"
	"equity-analyst/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyst over HTTP",
	RunE:  runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Shutdown(context.Background()) }()

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	analyst, err := buildAnalyst(ctx, cfg)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	srv := server.New(cfg.Server, server.Deps{
		Analyst: analyst,
		RunLog:  openRunLog(ctx, cfg),
	})
	return srv.Run(ctx)
}
