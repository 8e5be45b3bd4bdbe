package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserTracker is a store we can use to retrieve users
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider handles users
type UserProvider struct {
	store  UserTracker
	codec  PasswordAuthenticator
	logger Logger
}

// MaxLoginAttempts is the maximun number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		codec:  NewPasswordAuthenticator(),
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(logger Logger) *UserProvider {
	if logger != nil {
		u.logger = logger
	}
	return u
}

// WithPasswordAuthenticator overrides the credential codec.
func (u *UserProvider) WithPasswordAuthenticator(codec PasswordAuthenticator) *UserProvider {
	if codec != nil {
		u.codec = codec
	}
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// if we have too many attempts in the given window, cool off!
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	ok, err := u.codec.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		// We have to increment the login_attempts counter and login_attempt_at
		if err2 := u.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// Metadata only, never the credential material.
	u.logger.Debug("credential verified", "format", int(DecodeCredential(user.PasswordHash).Format), "user_id", user.ID.String())

	// reset the login_attempts counter and login_attempt_at
	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without verifying credentials
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	return NewIdentityFromUser(user), nil
}

var _ IdentityProvider = (*UserProvider)(nil)
