package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in llm role settings.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderNoop   = "noop"
)

// Price providers.
const (
	PricesYahoo     = "yahoo"
	PricesKite      = "kite"
	PricesSynthetic = "synthetic"
)

// GroqBaseURL is the OpenAI-compatible endpoint used by the groq provider.
const GroqBaseURL = "https://api.groq.com/openai/v1"

var validate = validator.New()

// LLMRole configures one of the two model roles (router or finalizer).
type LLMRole struct {
	Provider       string  `yaml:"provider" json:"provider" default:"groq" validate:"oneof=groq openai claude gemini noop"`
	Model          string  `yaml:"model" json:"model" validate:"required_unless=Provider noop"`
	BaseURL        string  `yaml:"base_url" json:"base_url"`
	APIKey         string  `yaml:"api_key" json:"-"`
	Temperature    float32 `yaml:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `yaml:"max_tokens" json:"max_tokens" validate:"gt=0"`
	TimeoutSeconds int     `yaml:"timeout_s" json:"timeout_s" default:"20" validate:"gt=0"`
	MaxRetries     int     `yaml:"max_retries" json:"max_retries" default:"1" validate:"gte=0,lte=5"`
}

func (r LLMRole) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type KiteConfig struct {
	APIKey      string `yaml:"api_key"`
	AccessToken string `yaml:"access_token"`
	Exchange    string `yaml:"exchange" default:"NSE"`
}

type PricesConfig struct {
	Provider       string     `yaml:"provider" default:"yahoo" validate:"oneof=yahoo kite synthetic"`
	BaseURL        string     `yaml:"base_url"`
	TimeoutSeconds int        `yaml:"timeout_s" default:"15" validate:"gt=0"`
	MaxRetries     int        `yaml:"max_retries" default:"2" validate:"gte=0,lte=5"`
	RatePerSecond  float64    `yaml:"rate_per_second" default:"2" validate:"gt=0"`
	Burst          int        `yaml:"burst" default:"1" validate:"gt=0"`
	Seed           int64      `yaml:"seed" default:"42"`
	Kite           KiteConfig `yaml:"kite"`
}

func (p PricesConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type AgentConfig struct {
	DefaultTicker string `yaml:"default_ticker" default:"AAPL" validate:"required,alpha,max=5"`
}

type ServerConfig struct {
	Host                  string `yaml:"host" default:"127.0.0.1"`
	Port                  int    `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_s" default:"60" validate:"gt=0"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RunLogConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days" default:"7" validate:"gte=0"`
}

type Config struct {
	Router    LLMRole      `yaml:"router" default:"{\"model\":\"llama-3.1-8b-instant\",\"temperature\":0.1,\"max_tokens\":500}"`
	Finalizer LLMRole      `yaml:"finalizer" default:"{\"model\":\"llama-3.1-70b-versatile\",\"temperature\":0.3,\"max_tokens\":900}"`
	Prices    PricesConfig `yaml:"prices"`
	Agent     AgentConfig  `yaml:"agent"`
	Server    ServerConfig `yaml:"server"`
	RunLog    RunLogConfig `yaml:"run_log"`
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed '%s' check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if c.Prices.Provider == PricesKite && (c.Prices.Kite.APIKey == "" || c.Prices.Kite.AccessToken == "") {
		return errors.New("prices.provider 'kite' needs KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	return nil
}

// Default returns a validated configuration built from defaults and the
// environment only.
func Default() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig reads path (skipped when empty), fills defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.Agent.DefaultTicker = strings.ToUpper(strings.TrimSpace(c.Agent.DefaultTicker))

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// applyEnv layers environment overrides on top of file values.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	num := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			if err := set(strings.TrimSpace(v)); err != nil {
				errs = append(errs, fmt.Errorf("invalid %s=%q: %w", key, v, err))
			}
		}
	}
	float32Into := func(dst *float32) func(string) error {
		return func(v string) error {
			f, err := strconv.ParseFloat(v, 32)
			*dst = float32(f)
			return err
		}
	}
	intInto := func(dst ...*int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			for _, d := range dst {
				*d = n
			}
			return err
		}
	}

	str("GROQ_ROUTER_MODEL", &c.Router.Model)
	str("GROQ_FINALIZER_MODEL", &c.Finalizer.Model)
	num("AFA_ROUTER_TEMP", float32Into(&c.Router.Temperature))
	num("AFA_FINALIZER_TEMP", float32Into(&c.Finalizer.Temperature))
	num("AFA_LLM_TIMEOUT_S", intInto(&c.Router.TimeoutSeconds, &c.Finalizer.TimeoutSeconds))
	num("AFA_LLM_MAX_RETRIES", intInto(&c.Router.MaxRetries, &c.Finalizer.MaxRetries))
	num("AFA_ROUTER_MAX_TOKENS", intInto(&c.Router.MaxTokens))
	num("AFA_FINALIZER_MAX_TOKENS", intInto(&c.Finalizer.MaxTokens))

	for _, role := range []*LLMRole{&c.Router, &c.Finalizer} {
		if key := APIKeyEnv(role.Provider); key != "" {
			str(key, &role.APIKey)
		}
	}

	str("ANALYST_PRICE_PROVIDER", &c.Prices.Provider)
	str("KITE_API_KEY", &c.Prices.Kite.APIKey)
	str("KITE_ACCESS_TOKEN", &c.Prices.Kite.AccessToken)
	return errors.Join(errs...)
}

// APIKeyEnv names the environment variable holding a provider's key.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderClaude:
		return "CLAUDE_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}
