package analysis

import "errors"

var (
	ErrUnsupportedFile = errors.New("Only .txt files are supported.")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")
	ErrUpstream        = errors.New("model completion failed")
	ErrNotFound        = errors.New("analysis not found")
)
