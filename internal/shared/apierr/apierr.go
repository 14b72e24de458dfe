// Package apierr classifies request failures into a small set of kinds and
// maps each kind to an HTTP status.
package apierr

import (
	"errors"
	"net/http"
)

// Kind is the category of a request failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindMissingField Kind = "missing_field"
	KindDecode       Kind = "decode"
	KindUpstream     Kind = "upstream"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// Mode selects the kind-to-status table.
type Mode string

const (
	// ModeCompat answers upstream failures with 200 and an error body.
	ModeCompat Mode = "compat"
	// ModeStrict gives every kind its own status.
	ModeStrict Mode = "strict"
)

var statusTable = map[Mode]map[Kind]int{
	ModeCompat: {
		KindValidation:   http.StatusBadRequest,
		KindMissingField: http.StatusUnprocessableEntity,
		KindDecode:       http.StatusInternalServerError,
		KindUpstream:     http.StatusOK,
		KindNotFound:     http.StatusNotFound,
		KindRateLimited:  http.StatusTooManyRequests,
		KindInternal:     http.StatusInternalServerError,
	},
	ModeStrict: {
		KindValidation:   http.StatusBadRequest,
		KindMissingField: http.StatusUnprocessableEntity,
		KindDecode:       http.StatusUnprocessableEntity,
		KindUpstream:     http.StatusBadGateway,
		KindNotFound:     http.StatusNotFound,
		KindRateLimited:  http.StatusTooManyRequests,
		KindInternal:     http.StatusInternalServerError,
	},
}

// Error is a classified request failure. Message is what the client sees.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ParseMode returns the mode named by raw, defaulting to ModeCompat.
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeStrict {
		return ModeStrict
	}
	return ModeCompat
}

// Status returns the HTTP status for kind under mode.
func (m Mode) Status(kind Kind) int {
	table, ok := statusTable[m]
	if !ok {
		table = statusTable[ModeCompat]
	}
	if status, ok := table[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// From classifies err. Errors that are not *Error become KindInternal with
// the original message preserved.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}
