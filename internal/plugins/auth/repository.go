package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/database"
)

// UserRepository defines the data access contract for user operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type UserRepository interface {
	// Create inserts a verified user. Returns apperror.Conflict when the
	// email is already taken.
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindBySession returns the user whose active session id is sessionID.
	FindBySession(ctx context.Context, email, sessionID string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdateSession replaces the active session id, revoking older tokens.
	UpdateSession(ctx context.Context, id, sessionID string, expiresAt time.Time) error
	ClearSession(ctx context.Context, id string) error
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, display_name, password_hash, points, user_rank,
	                 session_id, session_expires_at, created_at, updated_at`

// Create inserts a new user row into the users table.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, email, display_name, password_hash, points, user_rank,
	                             session_id, session_expires_at, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Points,
		user.Rank,
		nullString(user.SessionID),
		user.SessionExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if database.IsDuplicateKey(err) {
		return apperror.NewConflict("user already exists")
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

// FindBySession retrieves the user holding the given active session.
func (r *userRepository) FindBySession(ctx context.Context, email, sessionID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND session_id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by session: %w", err)
	}
	return user, nil
}

// EmailExists checks whether a user with the given email already exists.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// UpdateSession stores a new session id and expiry for the user.
func (r *userRepository) UpdateSession(ctx context.Context, id, sessionID string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET session_id = ?, session_expires_at = ?, updated_at = NOW() WHERE id = ?`,
		sessionID, expiresAt, id,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// ClearSession removes the active session so no token validates.
func (r *userRepository) ClearSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET session_id = NULL, session_expires_at = NULL, updated_at = NOW() WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var sessionID sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Points,
		&user.Rank,
		&sessionID,
		&user.SessionExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.SessionID = sessionID.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
