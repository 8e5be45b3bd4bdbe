package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultTokenExpirationMinutes bounds a token's lifetime when the
// configuration leaves it unset.
const DefaultTokenExpirationMinutes = 30

// TokenIssuer builds and signs session tokens from a user and role snapshot.
// The signing key is resolved once at construction; a missing key fails here
// so a misconfigured service never starts, instead of failing per request.
type TokenIssuer struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	clock           ClockSource
	logger          Logger
}

// NewTokenIssuer creates a TokenIssuer. The expiration is read from cfg in
// minutes, defaulting to DefaultTokenExpirationMinutes when unset.
func NewTokenIssuer(keys SigningKeyProvider, cfg Config, clock ClockSource, logger Logger) (*TokenIssuer, error) {
	if keys == nil {
		return nil, ErrMissingSigningKey
	}

	signingKey := keys.SecretKey()
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if clock == nil {
		clock = systemClock{}
	}

	if logger == nil {
		logger = defLogger{}
	}

	tokenExpiration := DefaultTokenExpirationMinutes
	issuer := ""
	var audience jwt.ClaimStrings
	if cfg != nil {
		if cfg.GetTokenExpiration() > 0 {
			tokenExpiration = cfg.GetTokenExpiration()
		}
		issuer = cfg.GetIssuer()
		audience = cfg.GetAudience()
	}

	return &TokenIssuer{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		clock:           clock,
		logger:          logger,
	}, nil
}

// Generate creates a signed JWT for the identity. A fresh token id is minted
// per call, issued-at comes from the injected clock, and an identity without
// a role gets the default USER role claim rather than an empty one.
func (ts *TokenIssuer) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	role := NormalizeRoleName(identity.Role())
	if role == "" {
		// Deliberate fallback, not an error: a user record missing a role
		// must never produce a token without any authorization role.
		role = DefaultRole
	}

	now := ts.clock.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Minute)),
		},
		UID:      identity.ID(),
		UserRole: role,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenIssuer) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenIssuer) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithTimeFunc(ts.clock.Now))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenIssuer validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenIssuer validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
