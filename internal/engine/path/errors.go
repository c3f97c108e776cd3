package path

import "errors"

var errNegativeIndex = errors.New("negative index")

// ParseError reports a malformed path string.
type ParseError struct {
	Input string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parse path " + e.Input + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
