package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// PreferenceRepository defines the data access contract for study
// preferences. Every lookup is scoped to the owning user.
type PreferenceRepository interface {
	Create(ctx context.Context, p *Preference) error
	FindByID(ctx context.Context, userID, id string) (*Preference, error)
	ListByUser(ctx context.Context, userID string) ([]Preference, error)
	Update(ctx context.Context, p *Preference) error
	Delete(ctx context.Context, userID, id string) error
}

type preferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a repository backed by the given DB pool.
func NewPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

const preferenceColumns = `id, user_id, subject, level, duration_weeks, start_date,
	                       daily_study_minutes, learning_goal, created_at, updated_at`

func (r *preferenceRepository) Create(ctx context.Context, p *Preference) error {
	query := `INSERT INTO study_preferences (` + preferenceColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Subject, p.Level, p.DurationWeeks, p.StartDate,
		p.DailyStudyMinutes, p.LearningGoal, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting study preference: %w", err)
	}
	return nil
}

func (r *preferenceRepository) FindByID(ctx context.Context, userID, id string) (*Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM study_preferences WHERE id = ? AND user_id = ?`

	var p Preference
	err := scanPreference(r.db.QueryRowContext(ctx, query, id, userID), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Study preference not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying study preference: %w", err)
	}
	return &p, nil
}

// ListByUser returns the user's preferences, earliest start first.
func (r *preferenceRepository) ListByUser(ctx context.Context, userID string) ([]Preference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM study_preferences
	          WHERE user_id = ? ORDER BY start_date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing study preferences: %w", err)
	}
	defer rows.Close()

	var out []Preference
	for rows.Next() {
		var p Preference
		if err := scanPreference(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning study preference: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *preferenceRepository) Update(ctx context.Context, p *Preference) error {
	query := `UPDATE study_preferences
	          SET subject = ?, level = ?, duration_weeks = ?, start_date = ?,
	              daily_study_minutes = ?, learning_goal = ?, updated_at = ?
	          WHERE id = ? AND user_id = ?`

	// MariaDB reports zero affected rows when nothing changed, so ownership
	// is checked by the caller through FindByID rather than here.
	_, err := r.db.ExecContext(ctx, query,
		p.Subject, p.Level, p.DurationWeeks, p.StartDate,
		p.DailyStudyMinutes, p.LearningGoal, p.UpdatedAt,
		p.ID, p.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating study preference: %w", err)
	}
	return nil
}

func (r *preferenceRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM study_preferences WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting study preference: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("Study preference not found")
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPreference(s scanner, p *Preference) error {
	return s.Scan(
		&p.ID, &p.UserID, &p.Subject, &p.Level, &p.DurationWeeks, &p.StartDate,
		&p.DailyStudyMinutes, &p.LearningGoal, &p.CreatedAt, &p.UpdatedAt,
	)
}
