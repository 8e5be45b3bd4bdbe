package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// roleChangeTxOptions serializes the admin-count read against concurrent
// membership writes. Two demotions of the last two admins must not both
// observe count=2.
var roleChangeTxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// RoleAssignmentCoordinator validates and atomically applies role changes.
// It is the sole gate for the role invariant: once any administrator exists,
// at least one must remain. Each call is a fresh transaction; no state is
// cached across calls.
type RoleAssignmentCoordinator struct {
	repo     RepositoryManager
	logger   Logger
	activity ActivitySink
}

// NewRoleAssignmentCoordinator creates a coordinator over the given stores.
func NewRoleAssignmentCoordinator(repo RepositoryManager) *RoleAssignmentCoordinator {
	return &RoleAssignmentCoordinator{
		repo:   repo,
		logger: defLogger{},
	}
}

func (c *RoleAssignmentCoordinator) WithLogger(logger Logger) *RoleAssignmentCoordinator {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithActivitySink registers an audit sink for applied role changes.
func (c *RoleAssignmentCoordinator) WithActivitySink(sink ActivitySink) *RoleAssignmentCoordinator {
	if sink != nil {
		c.activity = sink
	}
	return c
}

// SetRole replaces the user's role membership with the requested role and
// returns the reloaded snapshot.
//
// The request fails with ErrInvalidRole before any repository read when the
// normalized name is not ADMIN or USER, with ErrUserNotFound or
// ErrRoleNotFound when either side of the assignment is missing, and with
// ErrLastAdministrator when the change would demote the only admin. On any
// failure no mutation is performed.
func (c *RoleAssignmentCoordinator) SetRole(ctx context.Context, userID uuid.UUID, requestedRole string) (*User, error) {
	role, ok := ParseRole(requestedRole)
	if !ok {
		return nil, ErrInvalidRole
	}

	var updated *User
	err := c.repo.RunInTx(ctx, roleChangeTxOptions, func(ctx context.Context, tx bun.Tx) error {
		user, err := c.repo.Users().GetWithRolesTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		// Demoting an admin: the count check and the replace below must
		// observe the same state, which the surrounding transaction
		// guarantees.
		if user.HasRole(RoleAdmin) && role != RoleAdmin {
			admins, err := c.repo.Roles().CountUsersWithRoleTx(ctx, tx, RoleAdmin)
			if err != nil {
				return err
			}

			if admins <= 1 {
				c.logger.Info("role change rejected, last administrator", "user_id", userID.String())
				return ErrLastAdministrator
			}
		}

		target, err := c.repo.Roles().GetByNameTx(ctx, tx, role)
		if err != nil {
			return err
		}

		if err := c.repo.Roles().ReplaceUserAssignmentTx(ctx, tx, user.ID, target.ID); err != nil {
			return err
		}

		updated, err = c.repo.Users().GetWithRolesTx(ctx, tx, userID)
		return err
	})

	if err != nil {
		return nil, err
	}

	c.logger.Info("role assignment updated", "user_id", userID.String(), "role", role)
	recordActivity(ctx, c.activity, c.logger, ActivityEvent{
		EventType: ActivityEventRoleChanged,
		UserID:    userID.String(),
		Metadata:  map[string]any{"role": role},
	})

	return updated, nil
}

// GetRoleNames returns the user's role names in assignment order. Read-only
// projection, no invariant concerns.
func (c *RoleAssignmentCoordinator) GetRoleNames(ctx context.Context, userID uuid.UUID) ([]RoleName, error) {
	return c.repo.Roles().GetUserRoleNames(ctx, userID)
}

// ListUsersByRole returns the users holding the given role. The name is
// normalized but not restricted to the allowed set; an unknown role simply
// matches nobody.
func (c *RoleAssignmentCoordinator) ListUsersByRole(ctx context.Context, roleName string) ([]*User, error) {
	return c.repo.Roles().FindUsersByRole(ctx, NormalizeRoleName(roleName))
}
