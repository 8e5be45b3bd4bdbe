package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured JWT claims for an issued session token
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	TokenID() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the resolved role carried by the token
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// TokenID returns the unique token identifier (jti)
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// HasRole checks if the token carries a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == NormalizeRoleName(role)
}

// IsAdmin checks for the administrative role
func (c *JWTClaims) IsAdmin() bool {
	return c.UserRole == RoleAdmin
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a fresh unique token id when none is set. Two tokens
// issued for the same user at the same instant still differ.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
