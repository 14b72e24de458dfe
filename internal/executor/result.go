package executor

import (
	"encoding/json"
	"time"
)

// Result is the outcome of one run. When Err is set the other fields are
// zero.
type Result struct {
	Stdout     string
	Stderr     string
	ReturnCode int
	Err        error
	Duration   time.Duration
	// Truncated reports that output beyond the configured cap was dropped.
	Truncated bool
}

// MarshalJSON encodes {"stdout","stderr","returncode"} for a completed run
// and {"error"} otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Err.Error()})
	}
	return json.Marshal(struct {
		Stdout     string `json:"stdout"`
		Stderr     string `json:"stderr"`
		ReturnCode int    `json:"returncode"`
	}{Stdout: r.Stdout, Stderr: r.Stderr, ReturnCode: r.ReturnCode})
}

// limitedWriter keeps the first limit bytes and discards the rest. Write
// always reports the full length so the child never sees a short write.
type limitedWriter struct {
	buf       []byte
	limit     int
	truncated bool
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.limit - len(w.buf); room > 0 {
		if len(p) > room {
			w.buf = append(w.buf, p[:room]...)
			w.truncated = true
		} else {
			w.buf = append(w.buf, p...)
		}
	} else if len(p) > 0 {
		w.truncated = true
	}
	return len(p), nil
}

func (w *limitedWriter) String() string { return string(w.buf) }
