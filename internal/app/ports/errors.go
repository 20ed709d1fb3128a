package ports

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("version conflict")
)
