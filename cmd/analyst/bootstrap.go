package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"equity-analyst/internal/agent"
	"equity-analyst/internal/agent/agentobs"
	"equity-analyst/internal/interfaces"
	"equity-analyst/internal/llm"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/prices/feed"
	"equity-analyst/internal/runlog"
	"equity-analyst/internal/store"
)

// bootstrap loads .env, starts logging and reads the configuration before
// any subcommand runs.
func bootstrap(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	c, err := store.LoadConfig(path)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("load config: %w", err)}
	}
	cfg = c
	return nil
}

// buildAnalyst wires the planner, explainer and price fetcher into an
// observed analyst.
func buildAnalyst(ctx context.Context, cfg *store.Config) (interfaces.Analyst, error) {
	planner, err := llm.New(ctx, llm.RoleRouter, cfg.Router)
	if err != nil {
		return nil, fmt.Errorf("router llm: %w", err)
	}
	explainer, err := llm.New(ctx, llm.RoleFinalizer, cfg.Finalizer)
	if err != nil {
		return nil, fmt.Errorf("finalizer llm: %w", err)
	}
	fetcher, err := feed.New(cfg.Prices)
	if err != nil {
		return nil, fmt.Errorf("price feed: %w", err)
	}

	a := agent.New(agent.Deps{
		Planner:       planner,
		Explainer:     explainer,
		Prices:        fetcher,
		DefaultTicker: cfg.Agent.DefaultTicker,
	})
	return agentobs.Wrap(a), nil
}

// openRunLog returns the configured run log after compressing old files.
func openRunLog(ctx context.Context, cfg *store.Config) *runlog.Log {
	l := runlog.New(cfg.RunLog.Dir, cfg.RunLog.RetentionDays)
	if n, err := l.CompressOlder(); err != nil {
		logger.Warn(ctx, "Failed to compress old run logs", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "Compressed old run logs", "files", n)
	}
	return l
}
