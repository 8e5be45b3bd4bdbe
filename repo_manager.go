package auth

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes the durable stores plus the transaction boundary
// the role coordinator needs. RunInTx must serialize the admin-count read and
// the membership replace against all other role-mutating transactions.
type RepositoryManager interface {
	Users() Users
	Roles() Roles
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}
