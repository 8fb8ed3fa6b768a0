package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQuestion(t *testing.T) {
	q, err := readQuestion([]string{"How", "did", "AAPL", "do?"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "How did AAPL do?", q)

	q, err = readQuestion(nil, strings.NewReader("  MSFT vs NVDA ytd\n"))
	require.NoError(t, err)
	assert.Equal(t, "MSFT vs NVDA ytd", q)

	_, err = readQuestion([]string{"  "}, strings.NewReader(""))
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
	assert.ErrorIs(t, err, errNoQuestion)
}

func TestParseCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", "", "parse", "--today", "2024-04-15", "AAPL", "since", "2024-01-15"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.JSONEq(t, `{"tickers":["AAPL"],"compare":false,"start":"2024-01-15","end":"2024-04-15","interval":"daily"}`, out.String())
}

func TestAskEmptyQuestionExitsTwo(t *testing.T) {
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"--config", "", "ask"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetIn(nil) })

	err := rootCmd.Execute()
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
}
