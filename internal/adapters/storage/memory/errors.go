package memory

import (
	"errors"

	"pet-adoption-hub/internal/platform/apperr"
)

var (
	ErrNotFound  = apperr.ErrNotFound
	ErrDuplicate = apperr.ErrConflict

	errIDRequired = errors.New("id required")
)
