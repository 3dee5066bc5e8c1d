package bump

import "errors"

var (
	ErrUsage       = errors.New("exactly one of version, --patch, --minor or --major is required")
	ErrTestsFailed = errors.New("the test pipeline did not pass; make sure all tests pass before tagging")
)
