package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"equity-analyst/internal/intent"
	"equity-analyst/internal/logger"
	"equity-analyst/internal/runlog"
	"equity-analyst/internal/timeframe"
)

var errNoQuestion = errors.New("no question given")

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about one or more tickers",
	Long: `Answer a question such as "How did AAPL do over the last 3 months?".
The question is read from the arguments, or from stdin when none are given.`,
	RunE: runAsk,
}

var (
	askToday       string
	askShowParsed  bool
	askShowMetrics bool
	askTimeout     int
)

func init() {
	askCmd.Flags().StringVar(&askToday, "today", "", "Anchor date for relative timeframes (YYYY-MM-DD)")
	askCmd.Flags().BoolVar(&askShowParsed, "show-parsed", false, "Print the parsed intent before the answer")
	askCmd.Flags().BoolVar(&askShowMetrics, "show-metrics", false, "Print the metrics and tool trace after the answer")
	askCmd.Flags().IntVar(&askTimeout, "timeout", 60, "Overall timeout in seconds")
}

// readQuestion joins args, falling back to stdin.
func readQuestion(args []string, stdin io.Reader) (string, error) {
	q := strings.TrimSpace(strings.Join(args, " "))
	if q == "" && stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		q = strings.TrimSpace(string(b))
	}
	if q == "" {
		return "", &exitError{code: 2, err: errNoQuestion}
	}
	return q, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	anchor, err := timeframe.ParseAnchor(askToday)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if askTimeout <= 0 {
		return &exitError{code: 1, err: fmt.Errorf("--timeout must be positive, got %d", askTimeout)}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(askTimeout)*time.Second)
	defer cancel()
	defer func() { _ = logger.Shutdown(context.Background()) }()

	parsed := intent.Parse(question, anchor)
	out := cmd.OutOrStdout()
	if askShowParsed {
		if err := printJSON(out, "parsed", parsed); err != nil {
			return err
		}
	}

	analyst, err := buildAnalyst(ctx, cfg)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	res, err := analyst.Run(ctx, question, parsed)
	if err != nil {
		return err
	}

	if _, err := openRunLog(ctx, cfg).Append(runlog.FromAnalysis("cli", "", res)); err != nil {
		logger.ErrorWithErr(ctx, "Run log append failed", err)
	}

	fmt.Fprintln(out, res.Answer)
	if askShowMetrics {
		if err := printJSON(out, "metrics", res.Metrics); err != nil {
			return err
		}
		if err := printJSON(out, "trace", res.Trace); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, label string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s:\n%s\n", label, b)
	return err
}
