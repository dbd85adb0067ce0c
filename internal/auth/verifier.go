// Package auth is the identity-verification boundary. The engine consumes
// the verified profile it produces and never checks credentials itself.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dhamodran16/InspiraNet-sub005/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIdentity   = errors.New("token carries no identity")
)

type claims struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"dept"`
	Batch      string `json:"batch"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens issued by the auth service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (domain.Profile, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return domain.Profile{}, ErrNoIdentity
	}
	name := c.Name
	if name == "" {
		name = c.Subject
	}
	return domain.Profile{
		UserID:     domain.UserID(c.Subject),
		Name:       name,
		Role:       c.Role,
		Department: c.Department,
		Batch:      c.Batch,
	}, nil
}
