// Package quiz creates practice quizzes for plan modules and grades them.
// Grading happens here and only here: a passing submission completes the
// module, moves the plan's progress and earns leaderboard points once.
package quiz

import "time"

const (
	questionCount     = 5
	optionCount       = 4
	defaultDifficulty = "medium"
	timeLimitMinutes  = 15

	feedbackPassed = "Great job! You've passed the quiz!"
	feedbackFailed = "You didn't pass this time. Review the material and try again!"
)

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// passed reports whether score reaches 70% of maxScore.
func passed(score, maxScore int) bool {
	return maxScore > 0 && score*10 >= maxScore*7
}

// Quiz is a generated set of multiple choice questions about one module.
type Quiz struct {
	ID               string
	UserID           string
	PlanID           string
	ModuleID         string
	Subject          string
	Title            string
	Difficulty       string
	TimeLimitMinutes int
	Questions        []Question
	CreatedAt        time.Time
}

// Question is stored JSON-encoded in quizzes.questions.
type Question struct {
	Text        string   `json:"question"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
	Difficulty  string   `json:"difficulty"`
}

// Option is one answer choice.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// correctIndex returns the index of the first correct option, or -1.
func (q Question) correctIndex() int {
	for i, o := range q.Options {
		if o.IsCorrect {
			return i
		}
	}
	return -1
}

// Attempt is one graded submission.
type Attempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	UserID      string    `json:"-"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completedAt"`
}

// Result is the outcome of grading a submission.
type Result struct {
	Attempt         Attempt
	Percentage      float64
	Feedback        string
	ModuleCompleted bool
	PointsAwarded   bool
	Progress        float64
	Review          []Review
}

// Review tells the learner how one question went.
type Review struct {
	Question      string `json:"question"`
	Answer        int    `json:"answer"`
	CorrectAnswer int    `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

// --- Request DTOs ---

// CreateQuizRequest is the body of POST /quizzes.
type CreateQuizRequest struct {
	ModuleID   string `json:"moduleId"`
	Difficulty string `json:"difficulty"`
}

// SubmitRequest is the body of POST /quizzes/:id/submit. Answers holds one
// option index per question; -1 or a missing entry counts as wrong.
type SubmitRequest struct {
	Answers []int `json:"answers"`
}

// --- Response DTOs ---

// QuizResponse is the wire form of a Quiz. Correct answers and explanations
// are withheld until the quiz is submitted.
type QuizResponse struct {
	ID         string             `json:"id"`
	ModuleID   string             `json:"moduleId"`
	Subject    string             `json:"subject"`
	Title      string             `json:"title"`
	Difficulty string             `json:"difficulty"`
	TimeLimit  int                `json:"timeLimit"`
	Questions  []QuestionResponse `json:"questions"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// QuestionResponse is a question without its answer.
type QuestionResponse struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

// ResultResponse is the wire form of a Result.
type ResultResponse struct {
	Score           int      `json:"score"`
	MaxScore        int      `json:"maxScore"`
	Percentage      float64  `json:"percentage"`
	Passed          bool     `json:"passed"`
	Feedback        string   `json:"feedback"`
	ModuleCompleted bool     `json:"moduleCompleted"`
	PointsAwarded   bool     `json:"pointsAwarded"`
	Progress        float64  `json:"progress"`
	Review          []Review `json:"review"`
}

func (q *Quiz) toResponse() QuizResponse {
	resp := QuizResponse{
		ID:         q.ID,
		ModuleID:   q.ModuleID,
		Subject:    q.Subject,
		Title:      q.Title,
		Difficulty: q.Difficulty,
		TimeLimit:  q.TimeLimitMinutes,
		Questions:  make([]QuestionResponse, 0, len(q.Questions)),
		CreatedAt:  q.CreatedAt,
	}
	for _, question := range q.Questions {
		opts := make([]string, 0, len(question.Options))
		for _, o := range question.Options {
			opts = append(opts, o.Text)
		}
		resp.Questions = append(resp.Questions, QuestionResponse{
			Question:   question.Text,
			Options:    opts,
			Difficulty: question.Difficulty,
		})
	}
	return resp
}

func (r *Result) toResponse() ResultResponse {
	return ResultResponse{
		Score:           r.Attempt.Score,
		MaxScore:        r.Attempt.MaxScore,
		Percentage:      r.Percentage,
		Passed:          r.Attempt.Passed,
		Feedback:        r.Feedback,
		ModuleCompleted: r.ModuleCompleted,
		PointsAwarded:   r.PointsAwarded,
		Progress:        r.Progress,
		Review:          r.Review,
	}
}
