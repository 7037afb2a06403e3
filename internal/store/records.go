package store

// Result is a memoized text-channel result.
type Result struct {
	Key       string `json:"key"`
	Language  string `json:"language"`
	Program   string `json:"program"`
	InputHash string `json:"input_hash"`
	// Result is the canonical JSON text the executor produced.
	Result string `json:"result"`
	Seq    int64  `json:"seq"`
}

// Run is one execution through a Memo.
type Run struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Language string `json:"language"`
	Program  string `json:"program"`
	CacheHit bool   `json:"cache_hit"`
	// ErrorKind and ErrorMessage are empty for successful runs.
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Seq          int64  `json:"seq"`
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.ErrorMessage != ""
}
