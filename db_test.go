package auth_test

import (
	"context"
	"database/sql"
	"testing"

	auth "github.com/in6bv/go-auth"
	"github.com/in6bv/go-auth/repository"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteSchema = `
CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    username TEXT NOT NULL UNIQUE,
    profile_picture TEXT,
    email TEXT NOT NULL UNIQUE,
    phone_number TEXT,
    password_hash TEXT,
    is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    login_attempts INTEGER NOT NULL DEFAULT 0,
    login_attempt_at TIMESTAMP NULL,
    loggedin_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);

CREATE TABLE roles (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);

CREATE TABLE user_role_assignments (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    role_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
    FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE CASCADE
);`

// setupRepositoryManager opens an isolated in-memory database with the schema
// applied and canonical roles seeded.
func setupRepositoryManager(t *testing.T) auth.RepositoryManager {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	_, err = bunDB.Exec(sqliteSchema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	repo := repository.NewRepositoryManager(bunDB)
	require.NoError(t, repo.Roles().Seed(context.Background()))

	return repo
}

// seedUser registers a user with the given role assigned, skipping password
// work so repository tests stay fast.
func seedUser(t *testing.T, repo auth.RepositoryManager, username string, role auth.RoleName) *auth.User {
	t.Helper()
	ctx := context.Background()

	user, err := repo.Users().Register(ctx, &auth.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
	})
	require.NoError(t, err)

	if role != "" {
		record, err := repo.Roles().GetByName(ctx, role)
		require.NoError(t, err)
		require.NoError(t, repo.Roles().ReplaceUserAssignment(ctx, user.ID, record.ID))
	}

	return user
}
