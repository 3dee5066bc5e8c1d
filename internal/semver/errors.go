package semver

import "errors"

var (
	// ErrInvalidVersion is returned for strings outside the version grammar.
	ErrInvalidVersion = errors.New("not a valid semantic version")
)
