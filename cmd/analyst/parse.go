package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"equity-analyst/internal/intent"
	"equity-analyst/internal/timeframe"
)

var parseCmd = &cobra.Command{
	Use:   "parse [question]",
	Short: "Print the deterministic reading of a question as JSON",
	RunE:  runParse,
}

var parseToday string

func init() {
	parseCmd.Flags().StringVar(&parseToday, "today", "", "Anchor date for relative timeframes (YYYY-MM-DD)")
}

func runParse(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	anchor, err := timeframe.ParseAnchor(parseToday)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(intent.Parse(question, anchor))
}
