package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"itemvault/internal/auth"
	"itemvault/internal/model"
)

// UserInput holds the fields for creating a user. Password is plaintext and
// is hashed before anything touches the database.
type UserInput struct {
	Email       string
	Password    string
	FullName    string
	IsActive    bool
	IsSuperuser bool
}

// UserPatch holds a partial update. Nil fields are left untouched; a non-nil
// Password is rehashed before persisting.
type UserPatch struct {
	Email       *string
	Password    *string
	FullName    *string
	IsActive    *bool
	IsSuperuser *bool
}

// dummyHash is a valid bcrypt hash compared against when a login targets an
// unknown email, so the miss path costs the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CreateUser hashes the password and inserts a new user. A duplicate email
// surfaces as ErrConflict from the store's unique index.
func CreateUser(ctx context.Context, db *sql.DB, in UserInput) (*model.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, hashed_password, full_name, is_active, is_superuser)
		 VALUES (?, ?, ?, ?, ?)`,
		in.Email, hash, in.FullName, in.IsActive, in.IsSuperuser,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating user %q: %w", in.Email, ErrConflict)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or (nil, nil) if absent.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, full_name, is_active, is_superuser, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns a user by email, or (nil, nil) if absent. Absent is
// a valid, non-error outcome.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT id, email, hashed_password, full_name, is_active, is_superuser, created_at, updated_at
		 FROM users WHERE email = ?`, email))
}

// ListUsers returns all users ordered by ID.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, email, hashed_password, full_name, is_active, is_superuser, created_at, updated_at
		 FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update as a single UPDATE statement. Fields
// left nil in patch are untouched. An empty patch is an idempotent no-op.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, patch UserPatch) (*model.User, error) {
	var (
		sets []string
		args []any
	)

	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "hashed_password = ?")
		args = append(args, hash)
	}
	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if patch.IsSuperuser != nil {
		sets = append(sets, "is_superuser = ?")
		args = append(args, *patch.IsSuperuser)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)

		query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", "))
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("updating user %d: %w", id, ErrConflict)
			}
			return nil, fmt.Errorf("updating user: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("updating user: %w", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("updating user %d: %w", id, ErrNotFound)
		}
	}

	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("updating user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// UpdateUserPassword rehashes and stores a new password for a user.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, password string) error {
	_, err := UpdateUser(ctx, db, id, UserPatch{Password: &password})
	return err
}

// Authenticate looks up a user by email and verifies the password. Unknown
// email and wrong password both return (nil, nil): callers cannot tell the
// cases apart, by contract.
func Authenticate(ctx context.Context, db *sql.DB, email, password string) (*model.User, error) {
	user, err := GetUserByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		auth.VerifyPassword(password, dummyHash)
		return nil, nil
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

// DeleteUser removes a user and all items they own, atomically.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE owner_id = ?`, id); err != nil {
		return fmt.Errorf("deleting user items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deleting user %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// SeedFirstSuperuser creates the configured superuser if no account with that
// email exists yet. Idempotent across restarts.
func SeedFirstSuperuser(ctx context.Context, db *sql.DB, email, password string) (*model.User, error) {
	user, err := GetUserByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	return CreateUser(ctx, db, UserInput{
		Email:       email,
		Password:    password,
		IsActive:    true,
		IsSuperuser: true,
	})
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}
