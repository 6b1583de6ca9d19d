package leaderboard

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// memRepo is an in-memory LeaderboardRepository keyed by user and subject.
type memRepo struct {
	entries   map[[2]string]Entry
	lastLimit int
	lastScope Scope
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[[2]string]Entry)}
}

func (r *memRepo) List(_ context.Context, subject string, scope Scope, limit int) ([]Entry, error) {
	r.lastLimit, r.lastScope = limit, scope
	var out []Entry
	for _, e := range r.entries {
		if e.Subject != subject ||
			(scope.Country != "" && e.Country != scope.Country) ||
			(scope.State != "" && e.State != scope.State) ||
			(scope.City != "" && e.City != scope.City) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) Find(_ context.Context, userID, subject string) (*Entry, error) {
	e, ok := r.entries[[2]string{userID, subject}]
	if !ok {
		return nil, apperror.NewNotFound("User not found in leaderboard")
	}
	return &e, nil
}

func (r *memRepo) CountAbove(_ context.Context, subject string, score int) (int, error) {
	n := 0
	for _, e := range r.entries {
		if e.Subject == subject && e.Score > score {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) Update(_ context.Context, userID, subject string, fn func(*Entry) error) (*Entry, error) {
	key := [2]string{userID, subject}
	e, ok := r.entries[key]
	if !ok {
		e = Entry{UserID: userID, Subject: subject}
	}
	if err := fn(&e); err != nil {
		return nil, err
	}
	r.entries[key] = e
	return &e, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(repo LeaderboardRepository) (*leaderboardService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	return &leaderboardService{repo: repo, now: clock.Now}, clock
}

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

func TestRecordActivity_StudyTimeAndLocation(t *testing.T) {
	svc, _ := newTestService(newMemRepo())

	entry, err := svc.RecordActivity(context.Background(), "u1", "alice", "python", Activity{
		StudyMinutes: 45,
		Country:      "India",
		State:        "Karnataka",
		City:         "Bengaluru",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.TotalStudyMinutes != 45 || entry.Streak != 1 {
		t.Errorf("unexpected minutes/streak %d/%d", entry.TotalStudyMinutes, entry.Streak)
	}
	if entry.Score != 0 || entry.QuizzesPassed != 0 || entry.ModulesCompleted != 0 {
		t.Errorf("activity must not earn points, got %+v", entry)
	}
	if entry.Username != "alice" || entry.City != "Bengaluru" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestRecordActivity_RepeatedReportsEarnNothing(t *testing.T) {
	svc, _ := newTestService(newMemRepo())
	ctx := context.Background()

	var entry *Entry
	for range 50 {
		var err error
		entry, err = svc.RecordActivity(ctx, "u1", "alice", "python", Activity{StudyMinutes: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if entry.Score != 0 {
		t.Errorf("expected no points from activity reports, got %d", entry.Score)
	}
	if entry.TotalStudyMinutes != 500 {
		t.Errorf("expected 500 minutes, got %d", entry.TotalStudyMinutes)
	}
}

func TestAward_Accumulates(t *testing.T) {
	svc, clock := newTestService(newMemRepo())
	ctx := context.Background()

	_, _ = svc.RecordActivity(ctx, "u1", "alice", "python", Activity{Country: "India"})
	entry, err := svc.Award(ctx, "u1", "alice", "python", Achievement{QuizPassed: true, ModuleCompleted: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Score != quizPassPoints+moduleCompletePoints {
		t.Errorf("unexpected score %d", entry.Score)
	}

	clock.now = clock.now.Add(24 * time.Hour)
	entry, err = svc.Award(ctx, "u1", "alice", "python", Achievement{QuizPassed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Score != 2*quizPassPoints+moduleCompletePoints {
		t.Errorf("unexpected score %d", entry.Score)
	}
	if entry.QuizzesPassed != 2 || entry.ModulesCompleted != 1 || entry.Streak != 2 {
		t.Errorf("unexpected counters %+v", entry)
	}
	if entry.Country != "India" {
		t.Error("location should persist across awards")
	}
}

func TestRecordActivity_Validation(t *testing.T) {
	svc, _ := newTestService(newMemRepo())
	ctx := context.Background()

	_, err := svc.RecordActivity(ctx, "u1", "alice", "  ", Activity{})
	assertAppError(t, err, 400)
	_, err = svc.RecordActivity(ctx, "u1", "alice", "python", Activity{StudyMinutes: -1})
	assertAppError(t, err, 400)
	_, err = svc.RecordActivity(ctx, "u1", "alice", "python", Activity{StudyMinutes: maxStudyMins + 1})
	assertAppError(t, err, 400)
	_, err = svc.Award(ctx, "u1", "alice", "", Achievement{QuizPassed: true})
	assertAppError(t, err, 400)
}

func TestNextStreak(t *testing.T) {
	day := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		streak int
		last   time.Time
		now    time.Time
		want   int
	}{
		{"first activity", 0, time.Time{}, day, 1},
		{"same day", 3, day.Add(-5 * time.Hour), day, 3},
		{"next day", 3, day, day.Add(time.Hour), 4},
		{"missed a day", 3, day, day.Add(25 * time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStreak(tt.streak, tt.last, tt.now); got != tt.want {
				t.Errorf("nextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStanding_RankCountsHigherScores(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(repo)
	repo.entries[[2]string{"a", "python"}] = Entry{UserID: "a", Subject: "python", Score: 100}
	repo.entries[[2]string{"b", "python"}] = Entry{UserID: "b", Subject: "python", Score: 80}
	repo.entries[[2]string{"c", "python"}] = Entry{UserID: "c", Subject: "python", Score: 80}
	repo.entries[[2]string{"d", "python"}] = Entry{UserID: "d", Subject: "python", Score: 10}
	repo.entries[[2]string{"e", "go"}] = Entry{UserID: "e", Subject: "go", Score: 999}

	tests := map[string]int{"a": 1, "b": 2, "c": 2, "d": 4}
	for user, want := range tests {
		s, err := svc.Standing(context.Background(), user, "python")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", user, err)
		}
		if s.Rank != want {
			t.Errorf("%s: expected rank %d, got %d", user, want, s.Rank)
		}
	}

	_, err := svc.Standing(context.Background(), "nobody", "python")
	assertAppError(t, err, 404)
}

func TestTop_LimitAndScope(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Top(ctx, "python", Scope{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != defaultLimit {
		t.Errorf("expected default limit, got %d", repo.lastLimit)
	}

	_, _ = svc.Top(ctx, "python", Scope{Country: " India "}, 1000)
	if repo.lastLimit != maxLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxLimit, repo.lastLimit)
	}
	if repo.lastScope.Country != "India" {
		t.Errorf("expected trimmed country, got %q", repo.lastScope.Country)
	}
}
