package prune

import "errors"

var (
	ErrPathOutsideRoot = errors.New("candidate path is outside the output root")
	ErrRemoveFailed    = errors.New("failed to remove artifact")
	ErrRenameFailed    = errors.New("failed to rename template file")
)
