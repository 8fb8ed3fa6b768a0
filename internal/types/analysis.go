package types

// NoAnswer is returned when the explainer produced nothing usable.
const NoAnswer = "No answer produced; check logs."

// TraceEntry is one line of the tool interaction log kept for diagnostics.
type TraceEntry struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// Analysis is the outcome of answering one question.
type Analysis struct {
	Question   string            `json:"question"`
	Parsed     ParsedIntent      `json:"parsed"`
	Answer     string            `json:"answer"`
	Answered   bool              `json:"answered"`
	Metrics    map[string]Digest `json:"metrics"`
	Iterations int               `json:"iterations"`
	Fallbacks  int               `json:"fallbacks"`
	Trace      []TraceEntry      `json:"trace,omitempty"`
}
