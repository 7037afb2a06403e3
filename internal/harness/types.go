package harness

import "github.com/roach88/jqcty/internal/native"

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step    int    `json:"step"`
	Program string `json:"program"`
	Channel string `json:"channel"`

	// Text is set for the text channel.
	Text string `json:"text,omitempty"`

	// Result is the native result, set for the native and typed channels.
	Result native.Value `json:"-"`

	// Type is the dynamic type, set for the typed channel.
	Type string `json:"type,omitempty"`

	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`

	Seq int64 `json:"seq"`
}

// Failed reports whether the step ended in an error.
func (e TraceEvent) Failed() bool {
	return e.Error != ""
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step outcome to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
