// Package token issues and verifies the signed bearer credentials that back
// stateless sessions. Nothing is stored server-side: validity is purely
// signature plus expiry.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/chamomile/taskboard/internal/core/domain"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// fallbackSecret is used when no signing secret is configured. Known weak;
// the constructor logs a warning so operators notice.
const fallbackSecret = "fallback-secret-change-me"

// Identity is the decoded content of a verified token.
type Identity struct {
	UserID int64
	Email  string
}

// Claims is the JWT payload: user identity plus the registered time claims.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies bearer tokens with a process-wide HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. An empty secret falls back to a well-known
// default and emits a warning. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(secret string, ttl time.Duration, log zerolog.Logger) *Issuer {
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using fallback secret; do not run this in production")
		secret = fallbackSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token embedding the user's id and email.
func (i *Issuer) Issue(userID int64, email string) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify validates signature and expiry and returns the embedded identity.
// Every failure mode collapses into domain.ErrInvalidToken so callers cannot
// leak why a token was rejected.
func (i *Issuer) Verify(raw string) (*Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
