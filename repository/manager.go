package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	auth "github.com/in6bv/go-auth"
	"github.com/uptrace/bun"
)

type mngr struct {
	db    *bun.DB
	users auth.Users
	roles auth.Roles
}

func NewRepositoryManager(db *bun.DB) auth.RepositoryManager {
	return &mngr{
		db:    db,
		users: auth.NewUsersRepository(db),
		roles: auth.NewRolesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// RunInTx runs f inside a single database transaction. The coordinator relies
// on this boundary to serialize its admin-count read against concurrent
// membership writes; pass sql.TxOptions with the isolation the invariant
// needs.
func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() auth.Users {
	return m.users
}

func (m mngr) Roles() auth.Roles {
	return m.roles
}
