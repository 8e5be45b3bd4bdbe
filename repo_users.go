package auth

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ResetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"password_hash" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users persists and retrieves user records. The Tx variants take the caller's
// transaction so multi-step sequences stay atomic.
type Users interface {
	repository.Repository[*User]

	GetWithRoles(ctx context.Context, id uuid.UUID) (*User, error)
	GetWithRolesTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

// GetByIdentifierTx resolves a user by id, email, or username, with role
// memberships loaded.
func (a *users) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	identifier = strings.TrimSpace(identifier)

	for _, opt := range resolveUserIdentifier(identifier) {
		record := &User{}
		q := userWithRolesQuery(tx, record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where("?TableAlias."+opt.column+" = ?", opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if isEmptyResult(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, ErrUserNotFound
}

func (a *users) GetWithRoles(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetWithRolesTx(ctx, a.db, id)
}

// GetWithRolesTx loads a user snapshot with its role memberships resolved.
func (a *users) GetWithRolesTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := userWithRolesQuery(tx, record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)

	return err
}

func userWithRolesQuery(tx bun.IDB, record *User) *bun.SelectQuery {
	return tx.NewSelect().
		Model(record).
		Relation("RoleAssignments").
		Relation("RoleAssignments.Role")
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	if record.Username == "" {
		record.Username = record.Email
	}
}

type identifierOption struct {
	column string
	value  string
}

// resolveUserIdentifier maps an opaque identifier onto the column lookups to
// try, most specific first.
func resolveUserIdentifier(identifier string) []identifierOption {
	if identifier == "" {
		return nil
	}

	if id, err := uuid.Parse(identifier); err == nil {
		return []identifierOption{{column: "id", value: id.String()}}
	}

	if _, err := mail.ParseAddress(identifier); err == nil {
		return []identifierOption{{column: "email", value: strings.ToLower(identifier)}}
	}

	return []identifierOption{
		{column: "username", value: identifier},
		{column: "email", value: strings.ToLower(identifier)},
	}
}

func isEmptyResult(err error) bool {
	if err == nil {
		return false
	}
	if repository.IsRecordNotFound(err) {
		return true
	}
	return goerrors.Is(err, sql.ErrNoRows)
}
