package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("submit: %w", ErrValidation): http.StatusBadRequest,
		fmt.Errorf("approve: %w", ErrPermission): http.StatusForbidden,
		fmt.Errorf("get: %w", ErrNotFound):       http.StatusNotFound,
		fmt.Errorf("reject: %w", ErrConflict):    http.StatusConflict,
		ErrAuth:                                  http.StatusUnauthorized,
		ErrRateLimit:                             http.StatusTooManyRequests,
		context.DeadlineExceeded:                 http.StatusBadGateway,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), "err=%v", err)
	}
}

func TestPublicMessage_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: connection reset")))
	assert.Equal(t, "upstream unavailable", PublicMessage(fmt.Errorf("x: %w", ErrNetwork)))
	assert.Equal(t, "forbidden", PublicMessage(ErrPermission))
}

func TestKind_Nil(t *testing.T) {
	assert.Equal(t, ErrorKind(""), Kind(nil))
}
