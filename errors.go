package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidRole       = "invalid_role"
	TextCodeUserNotFound      = "user_not_found"
	TextCodeRoleNotFound      = "role_not_found"
	TextCodeLastAdministrator = "last_administrator"
	TextCodeMissingSigningKey = "missing_signing_key"
	TextCodeRandomSource      = "random_source_unavailable"
	TextCodeTokenExpired      = "token_expired"
	TextCodeTokenMalformed    = "token_malformed"
)

// ErrInvalidRole is returned when a requested role is not in the allowed set.
var ErrInvalidRole = goerrors.New("role not allowed, use ADMIN or USER", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when a user id does not resolve.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrRoleNotFound is returned when a role record is missing from storage.
// The canonical roles are seeded, so hitting this means the seed is broken;
// we surface it instead of silently defaulting.
var ErrRoleNotFound = goerrors.New("role not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeRoleNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrLastAdministrator is returned when a demotion would leave the system
// with no administrator. No mutation is performed.
var ErrLastAdministrator = goerrors.New("cannot remove last administrator", goerrors.CategoryConflict).
	WithTextCode(TextCodeLastAdministrator).
	WithCode(goerrors.CodeConflict)

// ErrMissingSigningKey is returned at issuer construction when no signing
// secret is configured. It should block startup, not surface per request.
var ErrMissingSigningKey = goerrors.New("token signing key is not configured", goerrors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey)

// ErrRandomSourceUnavailable is returned when the system random source fails
// during salt generation. Fatal, not retryable.
var ErrRandomSourceUnavailable = goerrors.New("random source unavailable", goerrors.CategoryInternal).
	WithTextCode(TextCodeRandomSource)

// ErrTokenExpired is returned when parsing a token past its expiry window.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature checks.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is the error for empty password input
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation)

// ErrMismatchedHashAndPassword is the generic credential verification failure
var ErrMismatchedHashAndPassword = goerrors.New("credentials do not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when a user is inside the cool down period
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit)

// IsValidationError checks for client fixable input errors.
func IsValidationError(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsNotFoundError checks for unknown user/role errors.
func IsNotFoundError(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

// IsInvariantViolation checks for the last-administrator protection error.
func IsInvariantViolation(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

func hasCategory(err error, category goerrors.Category) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == category
	}
	return false
}
