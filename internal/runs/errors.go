package runs

import "errors"

// Domain errors for run persistence.
var (
	ErrNotFound      = errors.New("run not found")
	ErrDuplicate     = errors.New("run already exists")
	ErrInvalidRecord = errors.New("invalid run record")
)
