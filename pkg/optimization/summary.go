// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single target-seek directive.
type Summary struct {
	Scenario        string   `json:"scenario"`
	Field           string   `json:"field"`
	Label           string   `json:"label"`
	Target          string   `json:"target"`
	TargetValue     float64  `json:"targetValue"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	Min             float64  `json:"min"`
	Max             float64  `json:"max"`
	Achieved        float64  `json:"achieved"`
	Gap             float64  `json:"gap"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty"`
}
