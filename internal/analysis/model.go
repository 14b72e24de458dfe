package analysis

import (
	"encoding/json"
	"time"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	ResultJSON = "json"
	ResultText = "text"
)

// Analysis is the stored record of one /analyze/ call.
type Analysis struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"requestId,omitempty"`
	FileName     string          `json:"fileName"`
	FileSize     int64           `json:"fileSize"`
	Question     string          `json:"question"`
	PromptHash   string          `json:"promptHash"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	Status       string          `json:"status"`
	ResultKind   string          `json:"resultKind,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	ArchiveKey   string          `json:"archiveKey,omitempty"`
	DurationMs   int64           `json:"durationMs"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Request is one uploaded file plus the question asked about it.
type Request struct {
	RequestID string
	FileName  string
	Data      []byte
	Question  string
}

// Outcome is the interpreted model reply. Exactly one of JSON and Text is
// meaningful, selected by Kind.
type Outcome struct {
	AnalysisID string
	Kind       string
	JSON       json.RawMessage
	Text       string
}

// Result returns the value placed under the "result" key.
func (o Outcome) Result() any {
	if o.Kind == ResultJSON {
		return o.JSON
	}
	return o.Text
}

// Stored encodes the result for persistence; text results become JSON strings.
func (o Outcome) Stored() json.RawMessage {
	if o.Kind == ResultJSON {
		return o.JSON
	}
	encoded, _ := json.Marshal(o.Text)
	return encoded
}
