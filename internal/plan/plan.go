// Package plan defines the routing decision produced each iteration and the
// rules that decide whether one is well formed. It never executes anything.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"equity-analyst/internal/types"
)

// Action is the routing decision.
type Action string

const (
	CallTools Action = "CALL_TOOLS"
	Finalize  Action = "FINALIZE"
)

// Tool names.
const (
	FetchPrices       = "fetch_prices"
	ComputeIndicators = "compute_indicators"
	SummarizeMetrics  = "summarize_metrics"
)

// MaxTickersPerCall caps fetch_prices.tickers.
const MaxTickersPerCall = 5

// ToolNames lists the tools a plan may call, in canonical order.
var ToolNames = []string{FetchPrices, ComputeIndicators, SummarizeMetrics}

// Indicators is the indicator vocabulary a plan may request.
var Indicators = []string{"sma20", "sma50", "ema20", "rsi14", "macd", "bbands"}

var (
	toolSet      = map[string]bool{FetchPrices: true, ComputeIndicators: true, SummarizeMetrics: true}
	indicatorSet = map[string]bool{"sma20": true, "sma50": true, "ema20": true, "rsi14": true, "macd": true, "bbands": true}
)

// ToolCall is one step of a plan.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Plan is the routing decision for one iteration.
type Plan struct {
	NextAction Action     `json:"next_action"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// FinalizePlan is the plan that ends the loop.
func FinalizePlan() Plan { return Plan{NextAction: Finalize} }

// ValidationError describes why a raw plan was rejected.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PlanError is returned by Coerce and Decode when the input cannot become a
// plan.
type PlanError struct {
	Err error
}

func (e *PlanError) Error() string { return "invalid router plan: " + e.Err.Error() }

func (e *PlanError) Unwrap() error { return e.Err }

// IsPlanError reports whether err is or wraps a *PlanError.
func IsPlanError(err error) bool {
	var pe *PlanError
	return errors.As(err, &pe)
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Validate checks a decoded plan object.
func Validate(raw map[string]any) error {
	action, ok := raw["next_action"]
	if !ok {
		return invalid("missing required field 'next_action'")
	}
	switch action {
	case string(CallTools):
		calls, ok := raw["tool_calls"]
		if !ok {
			return invalid("tool_calls required when next_action is CALL_TOOLS")
		}
		list, ok := calls.([]any)
		if !ok {
			return invalid("tool_calls must be list")
		}
		if len(list) == 0 {
			return invalid("tool_calls cannot be empty when next_action is CALL_TOOLS")
		}
		for i, c := range list {
			call, ok := c.(map[string]any)
			if !ok {
				return invalid("tool_calls[%d] must be object", i)
			}
			if err := ValidateToolCall(call); err != nil {
				return invalid("tool_calls[%d]: %s", i, err.Error())
			}
		}
	case string(Finalize):
		if calls, ok := raw["tool_calls"]; ok && !emptyValue(calls) {
			return invalid("tool_calls should be empty or absent when next_action is FINALIZE")
		}
	default:
		return invalid("next_action must be CALL_TOOLS or FINALIZE, got '%v'", action)
	}
	return nil
}

// ValidateToolCall checks a single decoded tool call.
func ValidateToolCall(call map[string]any) error {
	rawName, ok := call["name"]
	if !ok {
		return invalid("missing required field 'name'")
	}
	rawArgs, ok := call["args"]
	if !ok {
		return invalid("missing required field 'args'")
	}
	name, _ := rawName.(string)
	if !toolSet[name] {
		return invalid("unknown tool name: %v", rawName)
	}
	args, ok := rawArgs.(map[string]any)
	if !ok {
		return invalid("tool args must be object, got %T", rawArgs)
	}

	switch name {
	case FetchPrices:
		if v, ok := args["tickers"]; ok {
			list, ok := v.([]any)
			if !ok {
				return invalid("fetch_prices.tickers must be list")
			}
			if len(list) > MaxTickersPerCall {
				return invalid("fetch_prices.tickers exceeds %d (got %d)", MaxTickersPerCall, len(list))
			}
			for _, t := range list {
				if _, ok := t.(string); !ok {
					return invalid("fetch_prices.tickers must contain only strings")
				}
			}
		}
		if err := checkInterval(name, args); err != nil {
			return err
		}
		for _, field := range []string{"start", "end"} {
			if v, ok := args[field]; ok && v != nil {
				if _, ok := v.(string); !ok {
					return invalid("fetch_prices.%s must be string or null", field)
				}
			}
		}
	case ComputeIndicators:
		if v, ok := args["indicators"]; ok {
			list, ok := v.([]any)
			if !ok {
				return invalid("compute_indicators.indicators must be list")
			}
			var unknown []string
			for _, ind := range list {
				s, ok := ind.(string)
				if !ok || !indicatorSet[s] {
					unknown = append(unknown, fmt.Sprint(ind))
				}
			}
			if len(unknown) > 0 {
				sort.Strings(unknown)
				return invalid("unknown indicators: [%s]", strings.Join(unknown, ", "))
			}
		}
		if err := checkList(name, args, "tickers"); err != nil {
			return err
		}
	case SummarizeMetrics:
		if err := checkList(name, args, "tickers"); err != nil {
			return err
		}
		if err := checkInterval(name, args); err != nil {
			return err
		}
	}
	return nil
}

func checkList(tool string, args map[string]any, key string) error {
	if v, ok := args[key]; ok {
		if _, ok := v.([]any); !ok {
			return invalid("%s.%s must be list", tool, key)
		}
	}
	return nil
}

func checkInterval(tool string, args map[string]any) error {
	v, ok := args["interval"]
	if !ok {
		return nil
	}
	s, _ := v.(string)
	if !types.Interval(s).Valid() {
		return invalid("%s.interval must be daily/weekly/monthly, got '%v'", tool, v)
	}
	return nil
}

func emptyValue(v any) bool {
	if v == nil {
		return true
	}
	if list, ok := v.([]any); ok {
		return len(list) == 0
	}
	return false
}

// Coerce validates raw and converts it into a Plan.
func Coerce(raw map[string]any) (Plan, error) {
	if err := Validate(raw); err != nil {
		return Plan{}, &PlanError{Err: err}
	}
	p := Plan{NextAction: Action(raw["next_action"].(string))}
	if p.NextAction == Finalize {
		return p, nil
	}
	for _, c := range raw["tool_calls"].([]any) {
		call := c.(map[string]any)
		p.ToolCalls = append(p.ToolCalls, ToolCall{
			Name: call["name"].(string),
			Args: call["args"].(map[string]any),
		})
	}
	return p, nil
}

// Validate checks a typed plan against the same rules as a decoded one.
func (p Plan) Validate() error {
	raw, err := toRaw(p)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return Validate(raw)
}

// JSON renders the plan with sorted keys for logs.
func (p Plan) JSON() string {
	raw, err := toRaw(p)
	if err != nil {
		return "{}"
	}
	b, _ := json.MarshalIndent(raw, "", "  ")
	return string(b)
}

func toRaw(p Plan) (map[string]any, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
