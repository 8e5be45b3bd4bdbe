package auth

import (
	"context"
	"reflect"
)

// Auther wires identity verification and token issuance behind the
// Authenticator interface.
type Auther struct {
	provider IdentityProvider
	issuer   *TokenIssuer
	logger   Logger
	activity ActivitySink
}

// NewAuthenticator returns a new Authenticator. It fails when the signing
// key is not configured, so a broken deployment stops at startup.
func NewAuthenticator(provider IdentityProvider, cfg Config) (*Auther, error) {
	issuer, err := NewTokenIssuer(KeyProviderFromConfig(cfg), cfg, nil, nil)
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider: provider,
		issuer:   issuer,
		logger:   defLogger{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink registers an audit sink for login outcomes.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	if sink != nil {
		s.activity = sink
	}
	return s
}

// WithClock overrides the issuer clock source.
func (s *Auther) WithClock(clock ClockSource) *Auther {
	if clock != nil {
		s.issuer.clock = clock
	}
	return s
}

// TokenIssuer returns the TokenIssuer instance used by this Authenticator
func (s *Auther) TokenIssuer() *TokenIssuer {
	return s.issuer
}

// Login verifies the credentials for the identifier and returns a signed
// session token.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		recordActivity(ctx, s.activity, s.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
		})
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    identity.ID(),
	})

	return s.issuer.Generate(identity)
}

// Impersonate issues a token for the identifier without credential
// verification. Callers gate access to this.
func (s *Auther) Impersonate(ctx context.Context, identifier string) (string, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, identifier)
	if err != nil {
		s.logger.Error("Impersonate find identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		return "", ErrIdentityNotFound
	}

	return s.issuer.Generate(identity)
}

var _ Authenticator = (*Auther)(nil)
