package generate

import "errors"

var (
	ErrTestsFailed    = errors.New("post-generation tests failed")
	ErrInvalidOptions = errors.New("invalid generate options")
)
