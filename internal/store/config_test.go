package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GROQ_API_KEY", "GROQ_ROUTER_MODEL", "GROQ_FINALIZER_MODEL",
		"AFA_ROUTER_TEMP", "AFA_FINALIZER_TEMP", "AFA_LLM_TIMEOUT_S", "AFA_LLM_MAX_RETRIES",
		"AFA_ROUTER_MAX_TOKENS", "AFA_FINALIZER_MAX_TOKENS",
		"OPENAI_API_KEY", "CLAUDE_API_KEY", "GEMINI_API_KEY",
		"KITE_API_KEY", "KITE_ACCESS_TOKEN", "ANALYST_PRICE_PROVIDER",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, c.Router.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", c.Router.Model)
	assert.InDelta(t, 0.1, c.Router.Temperature, 1e-6)
	assert.Equal(t, 500, c.Router.MaxTokens)
	assert.Equal(t, "llama-3.1-70b-versatile", c.Finalizer.Model)
	assert.InDelta(t, 0.3, c.Finalizer.Temperature, 1e-6)
	assert.Equal(t, 900, c.Finalizer.MaxTokens)
	assert.Equal(t, 20, c.Router.TimeoutSeconds)
	assert.Equal(t, 1, c.Finalizer.MaxRetries)

	assert.Equal(t, PricesYahoo, c.Prices.Provider)
	assert.Equal(t, "NSE", c.Prices.Kite.Exchange)
	assert.Equal(t, "AAPL", c.Agent.DefaultTicker)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr())
	assert.Empty(t, c.RunLog.Dir)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
router:
  provider: claude
  model: claude-3-5-haiku-latest
prices:
  provider: synthetic
agent:
  default_ticker: msft
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, c.Router.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", c.Router.Model)
	assert.Equal(t, 500, c.Router.MaxTokens, "unset fields keep their defaults")
	assert.Equal(t, ProviderGroq, c.Finalizer.Provider)
	assert.Equal(t, PricesSynthetic, c.Prices.Provider)
	assert.Equal(t, "MSFT", c.Agent.DefaultTicker)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	var c Config
	require.NoError(t, c.applyEnv(mapLookup(nil)))

	c = Config{Router: LLMRole{Provider: ProviderGroq}, Finalizer: LLMRole{Provider: ProviderGemini}}
	err := c.applyEnv(mapLookup(map[string]string{
		"GROQ_API_KEY":             "gk",
		"GEMINI_API_KEY":           "mk",
		"GROQ_ROUTER_MODEL":        " llama-x ",
		"AFA_ROUTER_TEMP":          "0.25",
		"AFA_LLM_TIMEOUT_S":        "5",
		"AFA_FINALIZER_MAX_TOKENS": "1200",
		"ANALYST_PRICE_PROVIDER":   "kite",
	}))
	require.NoError(t, err)
	assert.Equal(t, "gk", c.Router.APIKey)
	assert.Equal(t, "mk", c.Finalizer.APIKey)
	assert.Equal(t, "llama-x", c.Router.Model)
	assert.InDelta(t, 0.25, c.Router.Temperature, 1e-6)
	assert.Equal(t, 5, c.Router.TimeoutSeconds)
	assert.Equal(t, 5, c.Finalizer.TimeoutSeconds)
	assert.Equal(t, 1200, c.Finalizer.MaxTokens)
	assert.Equal(t, PricesKite, c.Prices.Provider)

	err = c.applyEnv(mapLookup(map[string]string{"AFA_ROUTER_MAX_TOKENS": "lots"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AFA_ROUTER_MAX_TOKENS")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown provider", func(c *Config) { c.Router.Provider = "bard" }, "Provider"},
		{"model required", func(c *Config) { c.Finalizer.Model = "" }, "Model"},
		{"noop needs no model", func(c *Config) { c.Router.Provider = ProviderNoop; c.Router.Model = "" }, ""},
		{"zero tokens", func(c *Config) { c.Router.MaxTokens = 0 }, "MaxTokens"},
		{"bad price provider", func(c *Config) { c.Prices.Provider = "bloomberg" }, "Provider"},
		{"kite without keys", func(c *Config) { c.Prices.Provider = PricesKite }, "KITE_API_KEY"},
		{"kite with keys", func(c *Config) {
			c.Prices.Provider = PricesKite
			c.Prices.Kite.APIKey = "k"
			c.Prices.Kite.AccessToken = "t"
		}, ""},
		{"bad default ticker", func(c *Config) { c.Agent.DefaultTicker = "BRK.B" }, "DefaultTicker"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "Port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
