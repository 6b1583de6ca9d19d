package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vishwatech/studyplan/internal/apperror"
	"github.com/vishwatech/studyplan/internal/plugins/leaderboard"
	"github.com/vishwatech/studyplan/internal/plugins/plans"
)

// memRepo is an in-memory QuizRepository.
type memRepo struct {
	quizzes    map[string]Quiz
	attempts   []Attempt
	attemptErr error
}

func newMemRepo() *memRepo {
	return &memRepo{quizzes: make(map[string]Quiz)}
}

func (r *memRepo) Create(_ context.Context, q *Quiz) error {
	r.quizzes[q.ID] = *q
	return nil
}

func (r *memRepo) FindByID(_ context.Context, userID, id string) (*Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok || q.UserID != userID {
		return nil, apperror.NewNotFound("Quiz not found")
	}
	return &q, nil
}

func (r *memRepo) RecordAttempt(_ context.Context, a *Attempt) error {
	if r.attemptErr != nil {
		return r.attemptErr
	}
	r.attempts = append(r.attempts, *a)
	return nil
}

func (r *memRepo) ListAttempts(_ context.Context, userID, quizID string) ([]Attempt, error) {
	var out []Attempt
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if a := r.attempts[i]; a.QuizID == quizID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeModules is a ModuleSource over a fixed plan of three modules owned by
// user-1.
type fakeModules struct {
	completed map[string]bool
	quizOf    map[string]string
}

func newFakeModules() *fakeModules {
	return &fakeModules{completed: make(map[string]bool), quizOf: make(map[string]string)}
}

var moduleTitles = map[string]string{"mod-1": "Functions", "mod-2": "Loops", "mod-3": "Decorators"}

func (f *fakeModules) progress() float64 {
	return float64(len(f.completed)) * 100 / float64(len(moduleTitles))
}

func (f *fakeModules) FindModule(_ context.Context, userID, moduleID string) (*plans.ModuleRef, error) {
	title, ok := moduleTitles[moduleID]
	if !ok || userID != "user-1" {
		return nil, apperror.NewNotFound("Module not found")
	}
	return &plans.ModuleRef{
		Module:       plans.Module{ID: moduleID, PlanID: "plan-1", Title: title, Completed: f.completed[moduleID]},
		Subject:      "Python",
		Level:        "beginner",
		PlanProgress: f.progress(),
	}, nil
}

func (f *fakeModules) AttachQuiz(_ context.Context, _, moduleID, quizID string) error {
	f.quizOf[moduleID] = quizID
	return nil
}

func (f *fakeModules) CompleteModule(_ context.Context, userID, moduleID string) (*plans.Completion, error) {
	if _, ok := moduleTitles[moduleID]; !ok || userID != "user-1" {
		return nil, apperror.NewNotFound("Module not found")
	}
	newly := !f.completed[moduleID]
	f.completed[moduleID] = true
	return &plans.Completion{PlanID: "plan-1", Newly: newly, Progress: f.progress()}, nil
}

// mockAwarder records Award calls.
type mockAwarder struct {
	calls []leaderboard.Achievement
	err   error
}

func (m *mockAwarder) Award(_ context.Context, userID, username, subject string, a leaderboard.Achievement) (*leaderboard.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, a)
	return &leaderboard.Entry{UserID: userID, Username: username, Subject: subject}, nil
}

type testEnv struct {
	svc     *quizService
	repo    *memRepo
	modules *fakeModules
	points  *mockAwarder
}

// newTestEnv builds a service whose questions have their correct option at
// index i%4, where i is the question's position in its quiz.
func newTestEnv() *testEnv {
	env := &testEnv{repo: newMemRepo(), modules: newFakeModules(), points: &mockAwarder{}}
	n, q := 0, 0
	env.svc = &quizService{
		repo:    env.repo,
		modules: env.modules,
		points:  env.points,
		now:     func() time.Time { return time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC) },
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		pick: func(int) int {
			q++
			return ((q - 1) % questionCount) % optionCount
		},
	}
	return env
}

// correctAnswers are the option indexes newTestEnv marks correct.
var correctAnswers = []int{0, 1, 2, 3, 0}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func TestCreate_BuildsQuestions(t *testing.T) {
	env := newTestEnv()

	q, err := env.svc.Create(context.Background(), "user-1", CreateQuizRequest{ModuleID: "mod-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Title != "Quiz for Functions" || q.Subject != "Python" || q.PlanID != "plan-1" {
		t.Errorf("unexpected quiz: %+v", q)
	}
	if q.Difficulty != "medium" || q.TimeLimitMinutes != 15 || len(q.Questions) != 5 {
		t.Errorf("expected 5 medium questions with 15 minutes, got %s %d %d", q.Difficulty, q.TimeLimitMinutes, len(q.Questions))
	}
	for i, question := range q.Questions {
		if want := fmt.Sprintf("Question %d about Functions in Python?", i+1); question.Text != want {
			t.Errorf("question %d: %q", i, question.Text)
		}
		if len(question.Options) != 4 || question.correctIndex() != correctAnswers[i] {
			t.Errorf("question %d: options %+v", i, question.Options)
		}
		if question.Explanation == "" || question.Difficulty != "medium" {
			t.Errorf("question %d: missing explanation or difficulty", i)
		}
	}
	if env.modules.quizOf["mod-1"] != q.ID {
		t.Error("quiz should be linked to its module")
	}
	if _, ok := env.repo.quizzes[q.ID]; !ok {
		t.Error("quiz should be stored")
	}
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Create(ctx, "user-1", CreateQuizRequest{})
	assertAppError(t, err, 400)

	_, err = env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1", Difficulty: "brutal"})
	assertAppError(t, err, 400)

	_, err = env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-9"})
	assertAppError(t, err, 404)

	_, err = env.svc.Create(ctx, "user-2", CreateQuizRequest{ModuleID: "mod-1"})
	assertAppError(t, err, 404)

	q, err := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-2", Difficulty: "Hard"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != "hard" || q.Questions[0].Difficulty != "hard" {
		t.Errorf("difficulty should be normalized, got %q", q.Difficulty)
	}
}

func TestGrade_Threshold(t *testing.T) {
	env := newTestEnv()
	q, _ := env.svc.Create(context.Background(), "user-1", CreateQuizRequest{ModuleID: "mod-1"})

	tests := []struct {
		name    string
		answers []int
		score   int
		passed  bool
	}{
		{"all correct", []int{0, 1, 2, 3, 0}, 5, true},
		{"four of five", []int{0, 1, 2, 3, 1}, 4, true},
		{"three of five", []int{0, 1, 2, 0, 1}, 3, false},
		{"missing answers count as wrong", []int{0, 1, 2}, 3, false},
		{"out of range answers", []int{9, -1, 2, 3, 0}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(q, tt.answers)
			if res.Attempt.Score != tt.score || res.Attempt.Passed != tt.passed || res.Attempt.MaxScore != 5 {
				t.Errorf("got score %d/%d passed %v", res.Attempt.Score, res.Attempt.MaxScore, res.Attempt.Passed)
			}
			if len(res.Review) != 5 {
				t.Errorf("expected a review per question, got %d", len(res.Review))
			}
		})
	}
}

func TestPassed(t *testing.T) {
	tests := []struct {
		score, max int
		want       bool
	}{
		{7, 10, true},
		{6, 10, false},
		{4, 5, true},
		{3, 5, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := passed(tt.score, tt.max); got != tt.want {
			t.Errorf("passed(%d, %d) = %v, want %v", tt.score, tt.max, got, tt.want)
		}
	}
}

func TestSubmit_PassCompletesModuleAndAwardsOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1"})

	res, err := env.svc.Submit(ctx, "user-1", "alice", q.ID, correctAnswers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Attempt.Passed || res.Percentage != 100 || res.Feedback != feedbackPassed {
		t.Errorf("unexpected result: %+v", res)
	}
	if !res.ModuleCompleted || !res.PointsAwarded {
		t.Errorf("first pass should complete the module and award points: %+v", res)
	}
	if res.Progress != float64(100)/3 {
		t.Errorf("expected one third progress, got %v", res.Progress)
	}
	if len(env.points.calls) != 1 || !env.points.calls[0].QuizPassed || !env.points.calls[0].ModuleCompleted {
		t.Fatalf("expected one award for the pass, got %+v", env.points.calls)
	}

	res, err = env.svc.Submit(ctx, "user-1", "alice", q.ID, correctAnswers)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !res.Attempt.Passed || res.PointsAwarded {
		t.Errorf("repeat pass should earn nothing: %+v", res)
	}

	again, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1"})
	res, err = env.svc.Submit(ctx, "user-1", "alice", again.ID, correctAnswers)
	if err != nil {
		t.Fatalf("new quiz for the same module: %v", err)
	}
	if !res.Attempt.Passed || res.PointsAwarded {
		t.Errorf("a new quiz on a completed module should pass without points: %+v", res)
	}
	if len(env.points.calls) != 1 {
		t.Errorf("a completed module must not earn points again, got %d awards", len(env.points.calls))
	}
	if len(env.repo.attempts) != 3 {
		t.Errorf("every submission should be recorded, got %d", len(env.repo.attempts))
	}
}

func TestSubmit_FailLeavesModuleOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-2"})

	res, err := env.svc.Submit(ctx, "user-1", "alice", q.ID, []int{0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Attempt.Passed || res.Attempt.Score != 2 || res.Percentage != 40 || res.Feedback != feedbackFailed {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.ModuleCompleted || res.PointsAwarded || env.modules.completed["mod-2"] {
		t.Error("a failed quiz must not complete the module")
	}
	if len(env.points.calls) != 0 {
		t.Errorf("a failed quiz must not award points, got %+v", env.points.calls)
	}
	if res.Review[1].Correct || res.Review[1].CorrectAnswer != 1 || res.Review[1].Explanation == "" {
		t.Errorf("review should reveal the answer: %+v", res.Review[1])
	}
}

func TestSubmit_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1"})

	_, err := env.svc.Submit(ctx, "user-1", "alice", q.ID, nil)
	assertAppError(t, err, 400)

	_, err = env.svc.Submit(ctx, "user-1", "alice", q.ID, []int{0, 1, 2, 3, 0, 1})
	assertAppError(t, err, 400)

	_, err = env.svc.Submit(ctx, "user-2", "bob", q.ID, correctAnswers)
	assertAppError(t, err, 404)

	_, err = env.svc.Submit(ctx, "user-1", "alice", "missing", correctAnswers)
	assertAppError(t, err, 404)

	if len(env.repo.attempts) != 0 || len(env.points.calls) != 0 {
		t.Error("rejected submissions must leave no trace")
	}
}

func TestSubmit_AwardFailureKeepsCompletion(t *testing.T) {
	env := newTestEnv()
	env.points.err = errors.New("deadlock")
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-3"})

	res, err := env.svc.Submit(ctx, "user-1", "alice", q.ID, correctAnswers)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	if !res.ModuleCompleted || res.PointsAwarded {
		t.Errorf("expected completion without points: %+v", res)
	}
}

func TestSubmit_RecordFailure(t *testing.T) {
	env := newTestEnv()
	env.repo.attemptErr = errors.New("disk full")
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1"})

	_, err := env.svc.Submit(ctx, "user-1", "alice", q.ID, correctAnswers)
	assertAppError(t, err, 500)
	if env.modules.completed["mod-1"] || len(env.points.calls) != 0 {
		t.Error("an unrecorded attempt must not complete the module")
	}
}

func TestAttempts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	q, _ := env.svc.Create(ctx, "user-1", CreateQuizRequest{ModuleID: "mod-1"})
	_, _ = env.svc.Submit(ctx, "user-1", "alice", q.ID, []int{0})
	_, _ = env.svc.Submit(ctx, "user-1", "alice", q.ID, correctAnswers)

	attempts, err := env.svc.Attempts(ctx, "user-1", q.ID)
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 2 || !attempts[0].Passed || attempts[1].Passed {
		t.Errorf("expected newest first, got %+v", attempts)
	}

	_, err = env.svc.Attempts(ctx, "user-2", q.ID)
	assertAppError(t, err, 404)
}
