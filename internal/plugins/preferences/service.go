package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/sanitize"
)

// PreferenceService manages a user's study preferences.
type PreferenceService interface {
	Create(ctx context.Context, userID string, req CreatePreferenceRequest) (*Preference, error)
	List(ctx context.Context, userID string) ([]Preference, error)
	Get(ctx context.Context, userID, id string) (*Preference, error)
	Update(ctx context.Context, userID, id string, req UpdatePreferenceRequest) (*Preference, error)
	Delete(ctx context.Context, userID, id string) error
}

type preferenceService struct {
	repo  PreferenceRepository
	now   func() time.Time
	newID func() string
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(repo PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo, now: time.Now, newID: uuid.NewString}
}

func (s *preferenceService) Create(ctx context.Context, userID string, req CreatePreferenceRequest) (*Preference, error) {
	now := s.now().UTC().Truncate(time.Second)
	p := &Preference{
		ID:                s.newID(),
		UserID:            userID,
		DailyStudyMinutes: defaultDailyMinutes,
		LearningGoal:      defaultGoal,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if req.Subject == "" || req.Level == "" || req.Duration == 0 || req.StartDate == "" {
		return nil, apperror.NewBadRequest("Subject, level, duration, and start date are required")
	}
	if err := applySubject(p, req.Subject); err != nil {
		return nil, err
	}
	if err := applyLevel(p, req.Level); err != nil {
		return nil, err
	}
	if err := applyDuration(p, req.Duration); err != nil {
		return nil, err
	}
	if err := applyStartDate(p, req.StartDate); err != nil {
		return nil, err
	}
	if req.DailyStudyTime != nil {
		if err := applyDailyMinutes(p, *req.DailyStudyTime); err != nil {
			return nil, err
		}
	}
	if req.LearningGoal != "" {
		if err := applyGoal(p, req.LearningGoal); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.NewInternal(err)
	}

	slog.Info("study preference created",
		slog.String("user_id", userID),
		slog.String("preference_id", p.ID),
		slog.String("subject", p.Subject),
	)
	return p, nil
}

func (s *preferenceService) List(ctx context.Context, userID string) ([]Preference, error) {
	prefs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return prefs, nil
}

func (s *preferenceService) Get(ctx context.Context, userID, id string) (*Preference, error) {
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}
	return p, nil
}

// Update applies the non-nil fields of req. The owner never changes.
func (s *preferenceService) Update(ctx context.Context, userID, id string, req UpdatePreferenceRequest) (*Preference, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		if err := applySubject(p, *req.Subject); err != nil {
			return nil, err
		}
	}
	if req.Level != nil {
		if err := applyLevel(p, *req.Level); err != nil {
			return nil, err
		}
	}
	if req.Duration != nil {
		if err := applyDuration(p, *req.Duration); err != nil {
			return nil, err
		}
	}
	if req.StartDate != nil {
		if err := applyStartDate(p, *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.DailyStudyTime != nil {
		if err := applyDailyMinutes(p, *req.DailyStudyTime); err != nil {
			return nil, err
		}
	}
	if req.LearningGoal != nil {
		if err := applyGoal(p, *req.LearningGoal); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return p, nil
}

func (s *preferenceService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.NewInternal(err)
	}
	slog.Info("study preference deleted", slog.String("user_id", userID), slog.String("preference_id", id))
	return nil
}

// --- Field validation ---

func applySubject(p *Preference, subject string) error {
	subject = sanitize.PlainText(subject)
	if subject == "" {
		return apperror.NewBadRequest("Subject name is required")
	}
	if len([]rune(subject)) > maxSubjectLen {
		return apperror.NewBadRequest(fmt.Sprintf("Subject must be at most %d characters", maxSubjectLen))
	}
	p.Subject = subject
	return nil
}

func applyLevel(p *Preference, level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if !validLevels[level] {
		return apperror.NewBadRequest("Level must be beginner, intermediate, or expert")
	}
	p.Level = level
	return nil
}

func applyDuration(p *Preference, weeks int) error {
	if weeks < 1 {
		return apperror.NewBadRequest("Duration must be at least 1 week")
	}
	if weeks > maxDurationWeeks {
		return apperror.NewBadRequest(fmt.Sprintf("Duration must be at most %d weeks", maxDurationWeeks))
	}
	p.DurationWeeks = weeks
	return nil
}

func applyStartDate(p *Preference, date string) error {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return apperror.NewBadRequest("Invalid start date format. Please use YYYY-MM-DD format")
	}
	p.StartDate = t
	return nil
}

func applyDailyMinutes(p *Preference, minutes int) error {
	if minutes < 1 || minutes > maxDailyMinutes {
		return apperror.NewBadRequest("Daily study time must be between 1 and 1440 minutes")
	}
	p.DailyStudyMinutes = minutes
	return nil
}

func applyGoal(p *Preference, goal string) error {
	goal = strings.ToLower(strings.TrimSpace(goal))
	if !validGoals[goal] {
		return apperror.NewBadRequest("Learning goal must be academic, practical, or both")
	}
	p.LearningGoal = goal
	return nil
}
