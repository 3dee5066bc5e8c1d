package metadata

import "errors"

var (
	ErrInvalidDocument  = errors.New("invalid TOML document")
	ErrTableNotFound    = errors.New("table not found")
	ErrNotATable        = errors.New("key is not a table")
	ErrVersionNotFound  = errors.New("version field not found")
	ErrVersionNotString = errors.New("version field is not a string")

	// ErrVersionNotEditable is returned when the version cannot be rewritten
	// in place, as with an inline table or a multi-line string.
	ErrVersionNotEditable = errors.New("version field cannot be edited in place")
)
