// Package leaderboard ranks learners per subject, globally or within a
// country, state or city. Points come only from quizzes graded on the
// server; clients may report study time and location, never scores.
package leaderboard

import "time"

const (
	// quizPassPoints is awarded for every passed quiz.
	quizPassPoints = 20

	// moduleCompletePoints is awarded for every completed module.
	moduleCompletePoints = 5

	defaultLimit = 10
	maxLimit     = 100

	maxSubjectLen  = 100
	maxLocationLen = 100
	maxStudyMins   = 24 * 60
)

// Entry is one user's standing in one subject.
type Entry struct {
	UserID            string    `json:"-"`
	Subject           string    `json:"subject"`
	Username          string    `json:"username"`
	Score             int       `json:"score"`
	ModulesCompleted  int       `json:"modulesCompleted"`
	QuizzesPassed     int       `json:"quizzesPassed"`
	Streak            int       `json:"streak"`
	TotalStudyMinutes int       `json:"totalStudyTimeMinutes"`
	City              string    `json:"city,omitempty"`
	State             string    `json:"state,omitempty"`
	Country           string    `json:"country,omitempty"`
	LastActive        time.Time `json:"lastActive"`
}

// Scope narrows a board to a location. State requires Country and City
// requires State, matching the route hierarchy.
type Scope struct {
	Country string
	State   string
	City    string
}

// Standing is a user's entry together with their position on the subject's
// global board.
type Standing struct {
	Rank int `json:"rank"`
	Entry
}

// Activity is what a client may report after a study session. It carries
// no points.
type Activity struct {
	StudyMinutes int
	City         string
	State        string
	Country      string
}

// Achievement is progress earned by a graded quiz submission. Only the quiz
// plugin builds one; no request body maps onto it.
type Achievement struct {
	QuizPassed      bool
	ModuleCompleted bool
}

// ActivityRequest is the body of POST /leaderboard/:subject/activity.
type ActivityRequest struct {
	StudyMinutes int    `json:"studyMinutes"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}
