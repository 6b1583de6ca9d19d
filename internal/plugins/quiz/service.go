package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/leaderboard"
	"github.com/vishwatech/studyplan/internal/plugins/plans"
)

// ModuleSource gives access to the modules of a user's plans. Implemented by
// plans.PlanService.
type ModuleSource interface {
	FindModule(ctx context.Context, userID, moduleID string) (*plans.ModuleRef, error)
	AttachQuiz(ctx context.Context, userID, moduleID, quizID string) error
	CompleteModule(ctx context.Context, userID, moduleID string) (*plans.Completion, error)
}

// PointsAwarder credits leaderboard points. Implemented by
// leaderboard.LeaderboardService.
type PointsAwarder interface {
	Award(ctx context.Context, userID, username, subject string, a leaderboard.Achievement) (*leaderboard.Entry, error)
}

// QuizService creates and grades quizzes.
type QuizService interface {
	Create(ctx context.Context, userID string, req CreateQuizRequest) (*Quiz, error)
	Get(ctx context.Context, userID, id string) (*Quiz, error)

	// Submit grades answers against the stored quiz. The first passing
	// submission for a module completes it and earns points; later passes
	// are recorded but earn nothing.
	Submit(ctx context.Context, userID, username, id string, answers []int) (*Result, error)
	Attempts(ctx context.Context, userID, id string) ([]Attempt, error)
}

type quizService struct {
	repo    QuizRepository
	modules ModuleSource
	points  PointsAwarder
	now     func() time.Time
	newID   func() string

	// pick returns the correct option index of a new question.
	pick func(n int) int
}

// NewQuizService creates a new quiz service.
func NewQuizService(repo QuizRepository, modules ModuleSource, points PointsAwarder) QuizService {
	return &quizService{
		repo:    repo,
		modules: modules,
		points:  points,
		now:     time.Now,
		newID:   uuid.NewString,
		pick:    rand.IntN,
	}
}

func (s *quizService) Create(ctx context.Context, userID string, req CreateQuizRequest) (*Quiz, error) {
	if strings.TrimSpace(req.ModuleID) == "" {
		return nil, apperror.NewBadRequest("moduleId is required")
	}
	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	if difficulty == "" {
		difficulty = defaultDifficulty
	}
	if !validDifficulties[difficulty] {
		return nil, apperror.NewBadRequest("Difficulty must be easy, medium, or hard")
	}

	ref, err := s.modules.FindModule(ctx, userID, req.ModuleID)
	if err != nil {
		return nil, err
	}

	q := &Quiz{
		ID:               s.newID(),
		UserID:           userID,
		PlanID:           ref.PlanID,
		ModuleID:         ref.ID,
		Subject:          ref.Subject,
		Title:            "Quiz for " + ref.Title,
		Difficulty:       difficulty,
		TimeLimitMinutes: timeLimitMinutes,
		Questions:        s.questions(ref.Title, ref.Subject, difficulty),
		CreatedAt:        s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := s.modules.AttachQuiz(ctx, userID, ref.ID, q.ID); err != nil {
		return nil, err
	}

	slog.Info("quiz created",
		slog.String("user_id", userID),
		slog.String("quiz_id", q.ID),
		slog.String("module_id", ref.ID),
		slog.String("difficulty", difficulty),
	)
	return q, nil
}

// questions builds the practice questions of a module.
func (s *quizService) questions(module, subject, difficulty string) []Question {
	out := make([]Question, questionCount)
	for i := range out {
		correct := s.pick(optionCount)
		opts := make([]Option, optionCount)
		for j := range opts {
			opts[j] = Option{Text: fmt.Sprintf("Option %d", j+1), IsCorrect: j == correct}
		}
		out[i] = Question{
			Text:        fmt.Sprintf("Question %d about %s in %s?", i+1, module, subject),
			Options:     opts,
			Explanation: fmt.Sprintf("Option %d is correct because it best describes %s.", correct+1, module),
			Difficulty:  difficulty,
		}
	}
	return out
}

func (s *quizService) Get(ctx context.Context, userID, id string) (*Quiz, error) {
	q, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}
	return q, nil
}

func (s *quizService) Submit(ctx context.Context, userID, username, id string, answers []int) (*Result, error) {
	q, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, apperror.NewBadRequest("answers are required")
	}
	if len(answers) > len(q.Questions) {
		return nil, apperror.NewBadRequest(fmt.Sprintf("Expected at most %d answers", len(q.Questions)))
	}

	ref, err := s.modules.FindModule(ctx, userID, q.ModuleID)
	if err != nil {
		return nil, err
	}

	res := grade(q, answers)
	res.Attempt.ID = s.newID()
	res.Attempt.UserID = userID
	res.Attempt.CompletedAt = s.now().UTC().Truncate(time.Second)
	res.Progress = ref.PlanProgress
	if err := s.repo.RecordAttempt(ctx, &res.Attempt); err != nil {
		return nil, apperror.NewInternal(err)
	}

	if res.Attempt.Passed {
		c, err := s.modules.CompleteModule(ctx, userID, q.ModuleID)
		if err != nil {
			return nil, err
		}
		res.ModuleCompleted = true
		res.Progress = c.Progress
		if c.Newly {
			res.PointsAwarded = s.award(ctx, userID, username, q)
		}
	}

	slog.Info("quiz submitted",
		slog.String("user_id", userID),
		slog.String("quiz_id", q.ID),
		slog.Int("score", res.Attempt.Score),
		slog.Bool("passed", res.Attempt.Passed),
		slog.Bool("points_awarded", res.PointsAwarded),
	)
	return res, nil
}

// award credits the quiz pass and module completion. The module is already
// marked complete, so a failure here is logged rather than returned.
func (s *quizService) award(ctx context.Context, userID, username string, q *Quiz) bool {
	_, err := s.points.Award(ctx, userID, username, q.Subject, leaderboard.Achievement{
		QuizPassed:      true,
		ModuleCompleted: true,
	})
	if err != nil {
		slog.Error("awarding quiz points failed",
			slog.String("user_id", userID),
			slog.String("quiz_id", q.ID),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

func (s *quizService) Attempts(ctx context.Context, userID, id string) ([]Attempt, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListAttempts(ctx, userID, id)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return attempts, nil
}

// grade scores answers against the stored correct options.
func grade(q *Quiz, answers []int) *Result {
	res := &Result{
		Attempt: Attempt{QuizID: q.ID, MaxScore: len(q.Questions)},
		Review:  make([]Review, 0, len(q.Questions)),
	}
	for i, question := range q.Questions {
		answer := -1
		if i < len(answers) {
			answer = answers[i]
		}
		correct := question.correctIndex()
		ok := correct >= 0 && answer == correct
		if ok {
			res.Attempt.Score++
		}
		res.Review = append(res.Review, Review{
			Question:      question.Text,
			Answer:        answer,
			CorrectAnswer: correct,
			Correct:       ok,
			Explanation:   question.Explanation,
		})
	}

	res.Attempt.Passed = passed(res.Attempt.Score, res.Attempt.MaxScore)
	if res.Attempt.MaxScore > 0 {
		res.Percentage = math.Round(float64(res.Attempt.Score)*10000/float64(res.Attempt.MaxScore)) / 100
	}
	res.Feedback = feedbackFailed
	if res.Attempt.Passed {
		res.Feedback = feedbackPassed
	}
	return res
}
