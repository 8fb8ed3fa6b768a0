package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Params{APIKey: "k", BaseURL: srv.URL + "/", Model: "gemini-2.0-flash", MaxTokens: 100})
	require.NoError(t, err)
	return c
}

func TestComplete(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[
			{"content":{"role":"model","parts":[]}},
			{"content":{"role":"model","parts":[{"text":"MSFT "},{"text":"outperformed."}]}}
		]}`))
	})

	out, err := c.Complete(context.Background(), "sys", "question")
	require.NoError(t, err)
	assert.Equal(t, "MSFT outperformed.", out)
}

func TestCompleteNoText(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Complete(context.Background(), "", "question")
	assert.ErrorIs(t, err, ErrNoText)
}
