package analyses

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotCompleted    = errors.New("analysis not completed")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
)
