package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-adoption-hub/internal/platform/apperr"
	"pet-adoption-hub/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret", "pethub")

	tok, err := v.Issue(auth.Claims{UserID: "u-1", Email: "ana@example.com", DisplayName: "Ana"}, time.Minute)
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Equal(t, "Ana", c.DisplayName)
}

func TestVerifier_RejectsWrongSecretAndIssuer(t *testing.T) {
	tok, err := NewVerifier("other", "pethub").Issue(auth.Claims{UserID: "u-1"}, time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("s3cret", "pethub").Verify(context.Background(), tok)
	assert.True(t, errors.Is(err, apperr.ErrAuth))

	tok, err = NewVerifier("s3cret", "someone-else").Issue(auth.Claims{UserID: "u-1"}, time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("s3cret", "pethub").Verify(context.Background(), tok)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier("s3cret", "")
	tok, err := v.Issue(auth.Claims{UserID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestVerifier_NotConfigured(t *testing.T) {
	_, err := NewVerifier("", "").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier("s", "").Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}
