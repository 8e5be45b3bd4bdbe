package auth

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles persists role records and role memberships. The Tx variants exist so
// the coordinator can run the admin-count read and the membership replace
// inside one transaction.
type Roles interface {
	repository.Repository[*Role]

	GetByName(ctx context.Context, name RoleName) (*Role, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name RoleName) (*Role, error)

	CountUsersWithRole(ctx context.Context, name RoleName) (int, error)
	CountUsersWithRoleTx(ctx context.Context, tx bun.IDB, name RoleName) (int, error)

	FindUsersByRole(ctx context.Context, name RoleName) ([]*User, error)
	FindUsersByRoleTx(ctx context.Context, tx bun.IDB, name RoleName) ([]*User, error)

	GetUserRoleNames(ctx context.Context, userID uuid.UUID) ([]RoleName, error)
	GetUserRoleNamesTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]RoleName, error)

	ReplaceUserAssignment(ctx context.Context, userID, roleID uuid.UUID) error
	ReplaceUserAssignmentTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error

	Seed(ctx context.Context) error
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

var (
	_ Roles                        = (*roles)(nil)
	_ repository.Repository[*Role] = (*roles)(nil)
)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
	}
}

func (r *roles) GetByName(ctx context.Context, name RoleName) (*Role, error) {
	return r.GetByNameTx(ctx, r.db, name)
}

func (r *roles) GetByNameTx(ctx context.Context, tx bun.IDB, name RoleName) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", NormalizeRoleName(name)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *roles) CountUsersWithRole(ctx context.Context, name RoleName) (int, error) {
	return r.CountUsersWithRoleTx(ctx, r.db, name)
}

// CountUsersWithRoleTx counts distinct users holding the role. When called
// from the coordinator this runs inside the same transaction as the
// membership replace that depends on it.
func (r *roles) CountUsersWithRoleTx(ctx context.Context, tx bun.IDB, name RoleName) (int, error) {
	var count int
	err := tx.NewSelect().
		ColumnExpr("count(DISTINCT ura.user_id)").
		Model((*UserRoleAssignment)(nil)).
		Join("JOIN roles AS rol ON rol.id = ura.role_id").
		Where("rol.name = ?", NormalizeRoleName(name)).
		Scan(ctx, &count)

	return count, err
}

func (r *roles) FindUsersByRole(ctx context.Context, name RoleName) ([]*User, error) {
	return r.FindUsersByRoleTx(ctx, r.db, name)
}

func (r *roles) FindUsersByRoleTx(ctx context.Context, tx bun.IDB, name RoleName) ([]*User, error) {
	var records []*User
	err := tx.NewSelect().
		Model(&records).
		Relation("RoleAssignments").
		Relation("RoleAssignments.Role").
		Join("JOIN user_role_assignments AS ura ON ura.user_id = usr.id").
		Join("JOIN roles AS rol ON rol.id = ura.role_id").
		Where("rol.name = ?", NormalizeRoleName(name)).
		Order("usr.username ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *roles) GetUserRoleNames(ctx context.Context, userID uuid.UUID) ([]RoleName, error) {
	return r.GetUserRoleNamesTx(ctx, r.db, userID)
}

func (r *roles) GetUserRoleNamesTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]RoleName, error) {
	var names []RoleName
	err := tx.NewSelect().
		ColumnExpr("rol.name").
		Model((*UserRoleAssignment)(nil)).
		Join("JOIN roles AS rol ON rol.id = ura.role_id").
		Where("ura.user_id = ?", userID).
		Order("ura.created_at ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, err
	}

	return names, nil
}

func (r *roles) ReplaceUserAssignment(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.ReplaceUserAssignmentTx(ctx, r.db, userID, roleID)
}

// ReplaceUserAssignmentTx drops every membership the user holds and inserts
// exactly one row for the given role. Role assignment is exclusive. The
// caller owns the transaction; when invoked from the coordinator this is
// atomic relative to the preceding admin-count check.
func (r *roles) ReplaceUserAssignmentTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*UserRoleAssignment)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	assignment := &UserRoleAssignment{
		ID:        uuid.New(),
		UserID:    userID,
		RoleID:    roleID,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	_, err = tx.NewInsert().Model(assignment).Exec(ctx)
	return err
}

// Seed inserts the canonical roles when missing. Roles are seeded once;
// afterwards only membership changes.
func (r *roles) Seed(ctx context.Context) error {
	for _, name := range AllRoles() {
		_, err := r.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !IsNotFoundError(err) {
			return err
		}

		if _, err := r.Repository.Create(ctx, &Role{ID: uuid.New(), Name: name}); err != nil {
			return err
		}
	}

	return nil
}
