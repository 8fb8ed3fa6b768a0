package plan

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// ErrNoJSON means no strategy found a JSON object in the text.
var ErrNoJSON = errors.New("could not parse JSON object from planner response")

type extractor struct {
	name string
	fn   func(string) (map[string]any, bool)
}

// extractors run in order; the first that yields an object wins.
var extractors = []extractor{
	{"direct", directObject},
	{"fenced", fencedObject},
	{"braced", bracedObject},
}

// ExtractObject pulls a JSON object out of free text. It tries a direct
// parse, then a fenced code block, then the first balanced {...} span. The
// returned name identifies the strategy that succeeded.
func ExtractObject(text string) (map[string]any, string, error) {
	for _, ex := range extractors {
		if obj, ok := ex.fn(text); ok {
			return obj, ex.name, nil
		}
	}
	return nil, "", ErrNoJSON
}

// Decode extracts and coerces a plan from planner output.
func Decode(text string) (Plan, error) {
	obj, _, err := ExtractObject(text)
	if err != nil {
		return Plan{}, &PlanError{Err: err}
	}
	return Coerce(obj)
}

func directObject(text string) (map[string]any, bool) {
	return unmarshalObject(strings.TrimSpace(text))
}

func fencedObject(text string) (map[string]any, bool) {
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		if obj, ok := unmarshalObject(m[1]); ok {
			return obj, true
		}
		if obj, ok := bracedObject(m[1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func bracedObject(text string) (map[string]any, bool) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		if end := matchBrace(text, i); end > i {
			if obj, ok := unmarshalObject(text[i : end+1]); ok {
				return obj, true
			}
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// Braces inside JSON strings are ignored.
func matchBrace(text string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func unmarshalObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
