package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetPasswordMessage rotates a user's credential. Token delivery and email
// verification happen upstream; by the time this executes the request is
// already authorized.
type ResetPasswordMessage struct {
	UserID   uuid.UUID `json:"user_id"`
	Password string    `json:"password"`
}

func (e ResetPasswordMessage) Type() string { return "user.password_reset" }

// Validate will run validation rules
func (e ResetPasswordMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Password, validation.Required, validation.Length(10, 100)),
	)
}

// ResetPasswordHandler replaces the stored credential with a freshly salted
// standard-format hash. Salts are never reused across resets.
type ResetPasswordHandler struct {
	repo     RepositoryManager
	logger   Logger
	activity ActivitySink
}

// NewResetPasswordHandler creates a handler with sane defaults.
func NewResetPasswordHandler(repo RepositoryManager) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ResetPasswordHandler) WithLogger(logger Logger) *ResetPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithActivitySink registers an audit sink for applied resets.
func (h *ResetPasswordHandler) WithActivitySink(sink ActivitySink) *ResetPasswordHandler {
	if sink != nil {
		h.activity = sink
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	if event.UserID == uuid.Nil {
		return ErrUserNotFound
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		passwordHash, err := HashPassword(event.Password)
		if err != nil {
			return err
		}

		if err := h.repo.Users().ResetPasswordTx(ctx, tx, event.UserID, passwordHash); err != nil {
			if goerrors.IsNotFound(err) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password in database")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	h.logger.Info("password reset applied", "user_id", event.UserID.String())
	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		UserID:    event.UserID.String(),
	})

	return nil
}
