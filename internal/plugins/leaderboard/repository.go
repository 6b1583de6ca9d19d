package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// LeaderboardRepository defines the data access contract for leaderboard
// entries.
type LeaderboardRepository interface {
	// List returns the top entries of a subject within scope, best first.
	List(ctx context.Context, subject string, scope Scope, limit int) ([]Entry, error)
	Find(ctx context.Context, userID, subject string) (*Entry, error)

	// CountAbove counts entries in the subject with a strictly higher score.
	CountAbove(ctx context.Context, subject string, score int) (int, error)

	// Update loads the entry (or a zero entry for a first activity) under a
	// row lock, lets fn modify it and writes it back. The score difference is
	// added to the user's total points in the same transaction.
	Update(ctx context.Context, userID, subject string, fn func(*Entry) error) (*Entry, error)
}

type leaderboardRepository struct {
	db *sql.DB
}

// NewLeaderboardRepository creates a repository backed by the given DB pool.
func NewLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

const entryColumns = `user_id, subject, username, score, modules_completed, quizzes_passed,
	                  streak, total_study_minutes, city, state, country, last_active`

func (r *leaderboardRepository) List(ctx context.Context, subject string, scope Scope, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM leaderboard_entries WHERE subject = ?`
	args := []any{subject}
	if scope.Country != "" {
		query += ` AND country = ?`
		args = append(args, scope.Country)
	}
	if scope.State != "" {
		query += ` AND state = ?`
		args = append(args, scope.State)
	}
	if scope.City != "" {
		query += ` AND city = ?`
		args = append(args, scope.City)
	}
	query += ` ORDER BY score DESC, last_active ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *leaderboardRepository) Find(ctx context.Context, userID, subject string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM leaderboard_entries WHERE user_id = ? AND subject = ?`

	var e Entry
	err := scanEntry(r.db.QueryRowContext(ctx, query, userID, subject), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("User not found in leaderboard")
	}
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard entry: %w", err)
	}
	return &e, nil
}

func (r *leaderboardRepository) CountAbove(ctx context.Context, subject string, score int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard_entries WHERE subject = ? AND score > ?`,
		subject, score,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting higher scores: %w", err)
	}
	return n, nil
}

func (r *leaderboardRepository) Update(ctx context.Context, userID, subject string, fn func(*Entry) error) (*Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var e Entry
	err = scanEntry(tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM leaderboard_entries WHERE user_id = ? AND subject = ? FOR UPDATE`,
		userID, subject,
	), &e)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		e = Entry{UserID: userID, Subject: subject}
	case err != nil:
		return nil, fmt.Errorf("locking leaderboard entry: %w", err)
	}
	before := e.Score

	if err := fn(&e); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO leaderboard_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		     username = VALUES(username), score = VALUES(score),
		     modules_completed = VALUES(modules_completed), quizzes_passed = VALUES(quizzes_passed),
		     streak = VALUES(streak), total_study_minutes = VALUES(total_study_minutes),
		     city = VALUES(city), state = VALUES(state), country = VALUES(country),
		     last_active = VALUES(last_active)`,
		e.UserID, e.Subject, e.Username, e.Score, e.ModulesCompleted, e.QuizzesPassed,
		e.Streak, e.TotalStudyMinutes, e.City, e.State, e.Country, e.LastActive,
	)
	if err != nil {
		return nil, fmt.Errorf("saving leaderboard entry: %w", err)
	}

	if delta := e.Score - before; delta != 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET points = points + ? WHERE id = ?`, delta, userID,
		); err != nil {
			return nil, fmt.Errorf("updating user points: %w", err)
		}
		if err := updateUserRank(ctx, tx, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing leaderboard entry: %w", err)
	}
	return &e, nil
}

// updateUserRank stores the user's overall rank by total points. Ranks of
// other users are refreshed on their own next activity.
func updateUserRank(ctx context.Context, tx *sql.Tx, userID string) error {
	var rank int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 + COUNT(*) FROM users WHERE points > (SELECT points FROM users WHERE id = ?)`,
		userID,
	).Scan(&rank)
	if err != nil {
		return fmt.Errorf("computing user rank: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET user_rank = ? WHERE id = ?`, rank, userID); err != nil {
		return fmt.Errorf("updating user rank: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner, e *Entry) error {
	return s.Scan(
		&e.UserID, &e.Subject, &e.Username, &e.Score, &e.ModulesCompleted, &e.QuizzesPassed,
		&e.Streak, &e.TotalStudyMinutes, &e.City, &e.State, &e.Country, &e.LastActive,
	)
}
