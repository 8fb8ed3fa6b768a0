package plan

import "strings"

// StringList reads a list-of-strings argument. Non-string entries are
// skipped. The bool is false when the key is absent or not a list.
func StringList(args map[string]any, key string) ([]string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// OptionalString reads a string argument; null and absent both yield "".
func OptionalString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// Tickers reads and uppercases the tickers argument.
func Tickers(args map[string]any) ([]string, bool) {
	list, ok := StringList(args, "tickers")
	if !ok {
		return nil, false
	}
	for i, t := range list {
		list[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	return list, true
}
