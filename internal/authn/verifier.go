// Package authn turns bearer tokens issued by the identity provider into callers.
package authn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer = "auction-marketplace"
	defaultLeeway = 30 * time.Second
)

// Claims are the token claims the marketplace reads
type Claims struct {
	IsStaff bool `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// Config configures token verification
type Config struct {
	Secret string
	Issuer string
	Leeway time.Duration
}

// Verifier validates HS256 access tokens
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewVerifier creates a token verifier
func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("token verifier requires a secret")
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = defaultLeeway
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, leeway: leeway}, nil
}

// Verify validates a token and returns the caller it identifies
func (v *Verifier) Verify(token string) (models.Caller, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return models.Caller{}, fmt.Errorf("%w: %w", auctionerrors.ErrInvalidToken, err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return models.Caller{}, fmt.Errorf("%w: token subject missing", auctionerrors.ErrInvalidToken)
	}
	return models.Caller{ID: models.UserRef(subject), IsStaff: claims.IsStaff}, nil
}

// Sign issues a token for caller valid for ttl. It serves tests and local tooling; production
// tokens come from the identity provider sharing the secret.
func (v *Verifier) Sign(caller models.Caller, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		IsStaff: caller.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(caller.ID),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token of an Authorization header value. ok is false when the
// header is absent or not a bearer credential.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}
