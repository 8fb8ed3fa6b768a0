package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"equity-analyst/internal/store"
)

// exitError carries a process exit code up to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

var (
	configPath string
	cfg        *store.Config
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Answer questions about equities from price history",
	Long: `analyst reads a plain-English question about one or more stocks, fetches
their price history, computes indicators and metrics, and explains the
result in a few sentences.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file (optional)")
	rootCmd.AddCommand(askCmd, parseCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
