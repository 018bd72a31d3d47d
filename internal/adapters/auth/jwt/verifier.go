package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-hub/internal/platform/apperr"
	"pet-adoption-hub/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
)

// userClaims es el payload que emite el proveedor de identidad.
type userClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	gojwt.RegisteredClaims
}

// Verifier implementa auth.AuthVerifier con tokens HS256.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(strings.TrimSpace(secret)),
		issuer: strings.TrimSpace(issuer),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, fmt.Errorf("%w: %w", apperr.ErrAuth, ErrTokenEmpty)
	}

	opts := []gojwt.ParserOption{gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(v.issuer))
	}

	var c userClaims
	_, err := gojwt.ParseWithClaims(token, &c, func(*gojwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
	}

	uid := strings.TrimSpace(c.Subject)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: token missing sub", apperr.ErrAuth)
	}

	return auth.Claims{
		UserID:      uid,
		Email:       strings.TrimSpace(c.Email),
		DisplayName: strings.TrimSpace(c.Name),
	}, nil
}

// Issue firma un token para claims dados. Lo usan tests y herramientas locales;
// en producción los tokens los emite el proveedor de identidad.
func (v *Verifier) Issue(claims auth.Claims, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrNotConfigured
	}
	now := time.Now()
	c := userClaims{
		Email: claims.Email,
		Name:  claims.DisplayName,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    v.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, c).SignedString(v.secret)
}
