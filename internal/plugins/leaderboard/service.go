package leaderboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/sanitize"
)

// LeaderboardService reads boards, records study activity and awards the
// points earned through graded quizzes.
type LeaderboardService interface {
	Top(ctx context.Context, subject string, scope Scope, limit int) ([]Entry, error)
	Standing(ctx context.Context, userID, subject string) (*Standing, error)

	// RecordActivity adds study time and location. It never changes points.
	RecordActivity(ctx context.Context, userID, username, subject string, a Activity) (*Entry, error)

	// Award adds the points of a graded quiz submission.
	Award(ctx context.Context, userID, username, subject string, a Achievement) (*Entry, error)
}

type leaderboardService struct {
	repo LeaderboardRepository
	now  func() time.Time
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(repo LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo, now: time.Now}
}

// Top returns the best entries of a subject. limit is clamped to
// [1, maxLimit]; zero selects the default.
func (s *leaderboardService) Top(ctx context.Context, subject string, scope Scope, limit int) ([]Entry, error) {
	subject, err := cleanSubject(subject)
	if err != nil {
		return nil, err
	}
	scope = Scope{
		Country: cleanLocation(scope.Country),
		State:   cleanLocation(scope.State),
		City:    cleanLocation(scope.City),
	}

	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	entries, err := s.repo.List(ctx, subject, scope, limit)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return entries, nil
}

// Standing returns the user's entry with rank = 1 + number of higher scores,
// so tied users share a rank.
func (s *leaderboardService) Standing(ctx context.Context, userID, subject string) (*Standing, error) {
	subject, err := cleanSubject(subject)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.Find(ctx, userID, subject)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	higher, err := s.repo.CountAbove(ctx, subject, entry.Score)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &Standing{Rank: higher + 1, Entry: *entry}, nil
}

// RecordActivity adds study time to the user's entry, creating it on first
// use, and moves the entry to the reported location.
func (s *leaderboardService) RecordActivity(ctx context.Context, userID, username, subject string, a Activity) (*Entry, error) {
	subject, err := cleanSubject(subject)
	if err != nil {
		return nil, err
	}
	if a.StudyMinutes < 0 || a.StudyMinutes > maxStudyMins {
		return nil, apperror.NewBadRequest("studyMinutes must be between 0 and 1440")
	}
	a.City = cleanLocation(a.City)
	a.State = cleanLocation(a.State)
	a.Country = cleanLocation(a.Country)

	now := s.now().UTC().Truncate(time.Second)
	entry, err := s.repo.Update(ctx, userID, subject, func(e *Entry) error {
		e.Username = username
		applyActivity(e, a, now)
		return nil
	})
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("leaderboard activity recorded",
		slog.String("user_id", userID),
		slog.String("subject", subject),
		slog.Int("study_minutes", a.StudyMinutes),
	)
	return entry, nil
}

func (s *leaderboardService) Award(ctx context.Context, userID, username, subject string, a Achievement) (*Entry, error) {
	subject, err := cleanSubject(subject)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	entry, err := s.repo.Update(ctx, userID, subject, func(e *Entry) error {
		e.Username = username
		applyAchievement(e, a, now)
		return nil
	})
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("leaderboard points awarded",
		slog.String("user_id", userID),
		slog.String("subject", subject),
		slog.Bool("quiz_passed", a.QuizPassed),
		slog.Bool("module_completed", a.ModuleCompleted),
		slog.Int("score", entry.Score),
	)
	return entry, nil
}

// applyActivity folds one activity report into an entry.
func applyActivity(e *Entry, a Activity, now time.Time) {
	e.TotalStudyMinutes += a.StudyMinutes
	touch(e, now)

	if a.Country != "" {
		e.Country = a.Country
		e.State = a.State
		e.City = a.City
	}
}

// applyAchievement folds a graded quiz result into an entry.
func applyAchievement(e *Entry, a Achievement, now time.Time) {
	if a.QuizPassed {
		e.QuizzesPassed++
		e.Score += quizPassPoints
	}
	if a.ModuleCompleted {
		e.ModulesCompleted++
		e.Score += moduleCompletePoints
	}
	touch(e, now)
}

func touch(e *Entry, now time.Time) {
	e.Streak = nextStreak(e.Streak, e.LastActive, now)
	e.LastActive = now
}

// nextStreak counts consecutive UTC days with activity. Repeat activity on
// the same day keeps the streak; a missed day restarts it at 1.
func nextStreak(streak int, last, now time.Time) int {
	if last.IsZero() {
		return 1
	}
	lastDay := last.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)

	switch today.Sub(lastDay) {
	case 0:
		return max(streak, 1)
	case 24 * time.Hour:
		return streak + 1
	default:
		return 1
	}
}

func cleanSubject(subject string) (string, error) {
	subject = sanitize.PlainText(subject)
	if subject == "" {
		return "", apperror.NewBadRequest("subject is required")
	}
	if len([]rune(subject)) > maxSubjectLen {
		return "", apperror.NewBadRequest("subject is too long")
	}
	return subject, nil
}

func cleanLocation(v string) string {
	return sanitize.Truncate(sanitize.PlainText(v), maxLocationLen)
}
