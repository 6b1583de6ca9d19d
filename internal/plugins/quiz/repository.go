package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// QuizRepository defines the data access contract for quizzes and their
// attempts. Every lookup is scoped to the owning user.
type QuizRepository interface {
	Create(ctx context.Context, q *Quiz) error
	FindByID(ctx context.Context, userID, id string) (*Quiz, error)
	RecordAttempt(ctx context.Context, a *Attempt) error
	ListAttempts(ctx context.Context, userID, quizID string) ([]Attempt, error)
}

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a repository backed by the given DB pool.
func NewQuizRepository(db *sql.DB) QuizRepository {
	return &quizRepository{db: db}
}

const quizColumns = `id, user_id, plan_id, module_id, subject, title, difficulty,
	                 time_limit_minutes, questions, created_at`

func (r *quizRepository) Create(ctx context.Context, q *Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("encoding questions: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quizzes (`+quizColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.PlanID, q.ModuleID, q.Subject, q.Title, q.Difficulty,
		q.TimeLimitMinutes, questions, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting quiz: %w", err)
	}
	return nil
}

func (r *quizRepository) FindByID(ctx context.Context, userID, id string) (*Quiz, error) {
	var (
		q         Quiz
		questions []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(
		&q.ID, &q.UserID, &q.PlanID, &q.ModuleID, &q.Subject, &q.Title, &q.Difficulty,
		&q.TimeLimitMinutes, &questions, &q.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Quiz not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying quiz: %w", err)
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return &q, nil
}

func (r *quizRepository) RecordAttempt(ctx context.Context, a *Attempt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, user_id, score, max_score, passed, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.QuizID, a.UserID, a.Score, a.MaxScore, a.Passed, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting quiz attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the attempts of a quiz, newest first.
func (r *quizRepository) ListAttempts(ctx context.Context, userID, quizID string) ([]Attempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quiz_id, user_id, score, max_score, passed, completed_at
		 FROM quiz_attempts WHERE quiz_id = ? AND user_id = ?
		 ORDER BY completed_at DESC`,
		quizID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing quiz attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.MaxScore, &a.Passed, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning quiz attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
