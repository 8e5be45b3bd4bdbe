package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Impersonate(ctx context.Context, identifier string) (string, error)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// ClockSource supplies the current time to components that would otherwise
// read the wall clock internally. Injecting it keeps token issuance
// deterministic under test.
type ClockSource interface {
	Now() time.Time
}

// SigningKeyProvider resolves the symmetric signing secret. The key is read
// once, at issuer construction.
type SigningKeyProvider interface {
	SecretKey() []byte
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, stored string) (bool, error)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a ClockSource backed by time.Now.
func SystemClock() ClockSource { return systemClock{} }

type staticKeyProvider struct {
	key []byte
}

func (p staticKeyProvider) SecretKey() []byte { return p.key }

// StaticKeyProvider wraps a fixed secret in a SigningKeyProvider.
func StaticKeyProvider(key []byte) SigningKeyProvider {
	return staticKeyProvider{key: key}
}

// KeyProviderFromConfig resolves the signing secret from the auth config.
func KeyProviderFromConfig(cfg Config) SigningKeyProvider {
	if cfg == nil {
		return staticKeyProvider{}
	}
	return staticKeyProvider{key: []byte(cfg.GetSigningKey())}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
