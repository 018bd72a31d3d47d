// Package apperr define la taxonomía de errores compartida por todos los módulos.
// Los servicios envuelven estos sentinels con fmt.Errorf("...: %w") y los handlers
// los traducen a status HTTP con HTTPStatus.
package apperr

import (
	"context"
	"errors"
	"net"
	"net/http"
)

var (
	ErrNetwork    = errors.New("network error")
	ErrAuth       = errors.New("authentication error")
	ErrValidation = errors.New("invalid input")
	ErrPermission = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("invalid state")
	ErrRateLimit  = errors.New("rate limited")
)

type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindAuth       ErrorKind = "auth"
	KindValidation ErrorKind = "validation"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindRateLimit  ErrorKind = "rate_limit"
	KindUnknown    ErrorKind = "unknown"
)

// Kind clasifica un error para mostrarlo / medirlo.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrRateLimit):
		return KindRateLimit
	case errors.Is(err, ErrNetwork), isNetErr(err):
		return KindNetwork
	default:
		return KindUnknown
	}
}

func HTTPStatus(err error) int {
	switch Kind(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage evita filtrar detalles internos en errores 5xx.
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		if Kind(err) == KindNetwork {
			return "upstream unavailable"
		}
		return "internal error"
	}
	return err.Error()
}

func isNetErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
