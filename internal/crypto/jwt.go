package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the lifetime of an access token.
const DefaultTokenExpiry = 30 * time.Minute

var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrMissingSecret        = errors.New("token signing secret is not configured")
	ErrUnsupportedAlgorithm = errors.New("unsupported token signing algorithm")
)

// TokenIssuer signs and verifies HMAC bearer tokens carrying a subject and
// an expiry. Tokens are not stored; validity is signature plus expiry.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer for the named symmetric algorithm
// (HS256, HS384 or HS512).
func NewTokenIssuer(secret, algorithm string, expiry time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}

	return &TokenIssuer{
		secret: []byte(secret),
		method: method,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for subject that expires after the
// configured window.
func (i *TokenIssuer) Issue(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(i.now().Add(i.expiry)),
	}

	token := jwt.NewWithClaims(i.method, claims)
	return token.SignedString(i.secret)
}

// Verify checks the token's signature and expiry and returns its subject.
// Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
