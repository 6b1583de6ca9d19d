package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/database"
)

// PlanRepository defines the data access contract for study plans and their
// modules. Every lookup is scoped to the owning user.
type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	FindByID(ctx context.Context, userID, id string) (*Plan, error)
	ListByUser(ctx context.Context, userID string) ([]Plan, error)
	Delete(ctx context.Context, userID, id string) error

	FindModule(ctx context.Context, userID, moduleID string) (*ModuleRef, error)
	SetModuleQuiz(ctx context.Context, userID, moduleID, quizID string) error

	// CompleteModule marks the module complete and recomputes the plan's
	// progress in one transaction.
	CompleteModule(ctx context.Context, userID, moduleID string, at time.Time) (*Completion, error)
}

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a repository backed by the given DB pool.
func NewPlanRepository(db *sql.DB) PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, user_id, preference_id, subject, track, level, duration_weeks, start_date,
	                 overview, total_modules, progress, projects, created_at, updated_at`

const moduleColumns = `id, plan_id, position, week, title, description, start_date, end_date,
	                   estimated_hours, resources, completed, completed_at, quiz_id`

func (r *planRepository) Create(ctx context.Context, p *Plan) error {
	projects, err := json.Marshal(p.Projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO study_plans (`+planColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.PreferenceID, p.Subject, p.Track, p.Level, p.DurationWeeks, p.StartDate,
		p.Overview, p.TotalModules, p.Progress, projects, p.CreatedAt, p.UpdatedAt,
	)
	if database.IsDuplicateKey(err) {
		return apperror.NewConflict("A study plan already exists for this preference")
	}
	if err != nil {
		return fmt.Errorf("inserting study plan: %w", err)
	}

	for _, m := range p.Modules {
		resources, err := json.Marshal(m.Resources)
		if err != nil {
			return fmt.Errorf("encoding resources: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO plan_modules (`+moduleColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
			m.ID, p.ID, m.Position, m.Week, m.Title, m.Description, m.StartDate, m.EndDate,
			m.EstimatedHours, resources, m.Completed,
		)
		if err != nil {
			return fmt.Errorf("inserting plan module: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing study plan: %w", err)
	}
	return nil
}

func (r *planRepository) FindByID(ctx context.Context, userID, id string) (*Plan, error) {
	var p Plan
	err := scanPlan(r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM study_plans WHERE id = ? AND user_id = ?`, id, userID,
	), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Study plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying study plan: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM plan_modules WHERE plan_id = ? ORDER BY position ASC`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing plan modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Module
		if err := scanModule(rows, &m); err != nil {
			return nil, fmt.Errorf("scanning plan module: %w", err)
		}
		p.Modules = append(p.Modules, m)
	}
	return &p, rows.Err()
}

// ListByUser returns the user's plans without their modules, newest first.
func (r *planRepository) ListByUser(ctx context.Context, userID string) ([]Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM study_plans WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing study plans: %w", err)
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var p Plan
		if err := scanPlan(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning study plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a plan. Modules and quizzes go with it through ON DELETE
// CASCADE.
func (r *planRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM study_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting study plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("Study plan not found")
	}
	return nil
}

func (r *planRepository) FindModule(ctx context.Context, userID, moduleID string) (*ModuleRef, error) {
	var ref ModuleRef
	row := &moduleRow{m: &ref.Module}
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.plan_id, m.position, m.week, m.title, m.description, m.start_date, m.end_date,
		        m.estimated_hours, m.resources, m.completed, m.completed_at, m.quiz_id,
		        p.subject, p.level, p.progress
		 FROM plan_modules m JOIN study_plans p ON p.id = m.plan_id
		 WHERE m.id = ? AND p.user_id = ?`,
		moduleID, userID,
	).Scan(append(row.dest(), &ref.Subject, &ref.Level, &ref.PlanProgress)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan module: %w", err)
	}
	if err := row.finish(); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *planRepository) SetModuleQuiz(ctx context.Context, userID, moduleID, quizID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_modules m JOIN study_plans p ON p.id = m.plan_id
		 SET m.quiz_id = ? WHERE m.id = ? AND p.user_id = ?`,
		quizID, moduleID, userID,
	)
	if err != nil {
		return fmt.Errorf("linking module quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("Module not found")
	}
	return nil
}

func (r *planRepository) CompleteModule(ctx context.Context, userID, moduleID string, at time.Time) (*Completion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		c         Completion
		completed bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT m.plan_id, m.completed
		 FROM plan_modules m JOIN study_plans p ON p.id = m.plan_id
		 WHERE m.id = ? AND p.user_id = ? FOR UPDATE`,
		moduleID, userID,
	).Scan(&c.PlanID, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Module not found")
	}
	if err != nil {
		return nil, fmt.Errorf("locking plan module: %w", err)
	}

	if !completed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE plan_modules SET completed = TRUE, completed_at = ? WHERE id = ?`, at, moduleID,
		); err != nil {
			return nil, fmt.Errorf("completing plan module: %w", err)
		}
		c.Newly = true
	}

	var done, total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(completed), 0), COUNT(*) FROM plan_modules WHERE plan_id = ?`, c.PlanID,
	).Scan(&done, &total); err != nil {
		return nil, fmt.Errorf("counting plan modules: %w", err)
	}
	c.Progress = progressOf(done, total)

	if _, err := tx.ExecContext(ctx,
		`UPDATE study_plans SET progress = ?, updated_at = ? WHERE id = ?`, c.Progress, at, c.PlanID,
	); err != nil {
		return nil, fmt.Errorf("updating plan progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing module completion: %w", err)
	}
	return &c, nil
}

// progressOf returns the completed share as a percentage rounded to two
// decimals.
func progressOf(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)*10000/float64(total)) / 100
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner, p *Plan) error {
	var projects []byte
	if err := s.Scan(
		&p.ID, &p.UserID, &p.PreferenceID, &p.Subject, &p.Track, &p.Level, &p.DurationWeeks, &p.StartDate,
		&p.Overview, &p.TotalModules, &p.Progress, &projects, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal(projects, &p.Projects); err != nil {
		return fmt.Errorf("decoding projects: %w", err)
	}
	return nil
}

// moduleRow holds the encoded and nullable columns of a module until
// finish copies them into the Module.
type moduleRow struct {
	m         *Module
	resources []byte
	quizID    sql.NullString
}

func (r *moduleRow) dest() []any {
	m := r.m
	return []any{
		&m.ID, &m.PlanID, &m.Position, &m.Week, &m.Title, &m.Description, &m.StartDate, &m.EndDate,
		&m.EstimatedHours, &r.resources, &m.Completed, &m.CompletedAt, &r.quizID,
	}
}

func (r *moduleRow) finish() error {
	if err := json.Unmarshal(r.resources, &r.m.Resources); err != nil {
		return fmt.Errorf("decoding resources: %w", err)
	}
	r.m.QuizID = r.quizID.String
	return nil
}

func scanModule(s scanner, m *Module) error {
	row := &moduleRow{m: m}
	if err := s.Scan(row.dest()...); err != nil {
		return err
	}
	return row.finish()
}
