package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID             `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName       string                `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName        string                `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username        string                `bun:"username,notnull,unique" json:"username,omitempty"`
	ProfilePicture  string                `bun:"profile_picture" json:"profile_picture,omitempty"`
	Email           string                `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone           string                `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash    string                `bun:"password_hash" json:"-"`
	EmailValidated  bool                  `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	LoginAttempts   int                   `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt  *time.Time            `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt      *time.Time            `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	RoleAssignments []*UserRoleAssignment `bun:"rel:has-many,join:id=user_id" json:"role_assignments,omitempty"`
	CreatedAt       *time.Time            `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time            `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt       *time.Time            `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PrimaryRoleName resolves the user's single role name. Empty when the user
// has no membership; callers that issue tokens substitute DefaultRole.
func (u *User) PrimaryRoleName() RoleName {
	if u == nil {
		return ""
	}
	for _, assignment := range u.RoleAssignments {
		if assignment != nil && assignment.Role != nil {
			return assignment.Role.Name
		}
	}
	return ""
}

// HasRole checks whether the user currently holds the given role.
func (u *User) HasRole(name RoleName) bool {
	if u == nil {
		return false
	}
	for _, assignment := range u.RoleAssignments {
		if assignment != nil && assignment.Role != nil && assignment.Role.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in assignment order.
func (u *User) RoleNames() []RoleName {
	if u == nil {
		return nil
	}
	names := make([]RoleName, 0, len(u.RoleAssignments))
	for _, assignment := range u.RoleAssignments {
		if assignment != nil && assignment.Role != nil {
			names = append(names, assignment.Role.Name)
		}
	}
	return names
}

// Role is a canonical role record, seeded once and rarely mutated;
// only membership changes.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          RoleName   `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserRoleAssignment links a user to its single role.
type UserRoleAssignment struct {
	bun.BaseModel `bun:"table:user_role_assignments,alias:ura"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	RoleID        uuid.UUID  `bun:"role_id,notnull,type:uuid" json:"role_id,omitempty"`
	Role          *Role      `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
