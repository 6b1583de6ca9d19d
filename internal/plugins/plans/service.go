package plans

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/preferences"
)

// PreferenceFinder looks up a user's study preference. Implemented by
// preferences.PreferenceService.
type PreferenceFinder interface {
	Get(ctx context.Context, userID, id string) (*preferences.Preference, error)
}

// PlanService builds and tracks study plans.
type PlanService interface {
	// Preview generates a plan without storing it.
	Preview(ctx context.Context, req PreviewRequest) (*Plan, error)

	// Create generates and stores the plan of one of the user's preferences.
	// A preference has at most one plan.
	Create(ctx context.Context, userID, preferenceID string) (*Plan, error)
	List(ctx context.Context, userID string) ([]Plan, error)
	Get(ctx context.Context, userID, id string) (*Plan, error)
	Delete(ctx context.Context, userID, id string) error

	FindModule(ctx context.Context, userID, moduleID string) (*ModuleRef, error)
	AttachQuiz(ctx context.Context, userID, moduleID, quizID string) error
	CompleteModule(ctx context.Context, userID, moduleID string) (*Completion, error)
}

type planService struct {
	repo  PlanRepository
	prefs PreferenceFinder
	now   func() time.Time
	newID func() string
}

// NewPlanService creates a new plan service.
func NewPlanService(repo PlanRepository, prefs PreferenceFinder) PlanService {
	return &planService{repo: repo, prefs: prefs, now: time.Now, newID: uuid.NewString}
}

func (s *planService) Preview(_ context.Context, req PreviewRequest) (*Plan, error) {
	in := Params{
		Subject: strings.TrimSpace(req.Lang),
		Level:   strings.ToLower(strings.TrimSpace(req.Level)),
		Weeks:   req.Weeks,
	}
	if in.Subject == "" {
		in.Subject = defaultTrack
	}
	if in.Level != "" && !validLevels[in.Level] {
		return nil, apperror.NewBadRequest("Level must be beginner, intermediate, or expert")
	}
	if in.Weeks < 1 || in.Weeks > maxDurationWeeks {
		return nil, apperror.NewBadRequest(fmt.Sprintf("Weeks must be between 1 and %d", maxDurationWeeks))
	}

	in.StartDate = s.now().UTC().Truncate(24 * time.Hour)
	if req.StartDate != "" {
		t, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
		if err != nil {
			return nil, apperror.NewBadRequest("Invalid start date format. Please use YYYY-MM-DD format")
		}
		in.StartDate = t
	}
	return Generate(in), nil
}

func (s *planService) Create(ctx context.Context, userID, preferenceID string) (*Plan, error) {
	if strings.TrimSpace(preferenceID) == "" {
		return nil, apperror.NewBadRequest("preferenceId is required")
	}
	pref, err := s.prefs.Get(ctx, userID, preferenceID)
	if err != nil {
		return nil, err
	}

	p := Generate(Params{
		Subject:   pref.Subject,
		Level:     pref.Level,
		Weeks:     pref.DurationWeeks,
		StartDate: pref.StartDate,
	})
	now := s.now().UTC().Truncate(time.Second)
	p.ID = s.newID()
	p.UserID = userID
	p.PreferenceID = pref.ID
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Modules {
		p.Modules[i].ID = s.newID()
		p.Modules[i].PlanID = p.ID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if apperror.IsConflict(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	slog.Info("study plan created",
		slog.String("user_id", userID),
		slog.String("plan_id", p.ID),
		slog.String("track", p.Track),
		slog.Int("modules", p.TotalModules),
	)
	return p, nil
}

func (s *planService) List(ctx context.Context, userID string) ([]Plan, error) {
	plans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return plans, nil
}

func (s *planService) Get(ctx context.Context, userID, id string) (*Plan, error) {
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	return p, nil
}

func (s *planService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return notFoundOrInternal(err)
	}
	slog.Info("study plan deleted", slog.String("user_id", userID), slog.String("plan_id", id))
	return nil
}

func (s *planService) FindModule(ctx context.Context, userID, moduleID string) (*ModuleRef, error) {
	ref, err := s.repo.FindModule(ctx, userID, moduleID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	return ref, nil
}

func (s *planService) AttachQuiz(ctx context.Context, userID, moduleID, quizID string) error {
	if err := s.repo.SetModuleQuiz(ctx, userID, moduleID, quizID); err != nil {
		return notFoundOrInternal(err)
	}
	return nil
}

func (s *planService) CompleteModule(ctx context.Context, userID, moduleID string) (*Completion, error) {
	c, err := s.repo.CompleteModule(ctx, userID, moduleID, s.now().UTC().Truncate(time.Second))
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if c.Newly {
		slog.Info("module completed",
			slog.String("user_id", userID),
			slog.String("plan_id", c.PlanID),
			slog.Float64("progress", c.Progress),
		)
	}
	return c, nil
}

func notFoundOrInternal(err error) error {
	if apperror.IsNotFound(err) {
		return err
	}
	return apperror.NewInternal(err)
}
