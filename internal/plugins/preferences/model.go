// Package preferences stores each user's study preferences: what they want
// to learn, at which level, and on what schedule. All routes are scoped to
// the signed-in user; another user's record is reported as not found.
package preferences

import "time"

// Levels and goals accepted by the API. They mirror the ENUM columns in
// study_preferences.
var (
	validLevels = map[string]bool{"beginner": true, "intermediate": true, "expert": true}
	validGoals  = map[string]bool{"academic": true, "practical": true, "both": true}
)

const (
	dateLayout = "2006-01-02"

	defaultDailyMinutes = 60
	defaultGoal         = "both"
	maxSubjectLen       = 100
	maxDurationWeeks    = 260
	maxDailyMinutes     = 24 * 60
)

// Preference is one study plan request of a user.
type Preference struct {
	ID                string
	UserID            string
	Subject           string
	Level             string
	DurationWeeks     int
	StartDate         time.Time
	DailyStudyMinutes int
	LearningGoal      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// --- Request DTOs ---
// JSON names match the existing frontend.

// CreatePreferenceRequest is the body of POST /preferences.
type CreatePreferenceRequest struct {
	Subject        string `json:"subject"`
	Level          string `json:"level"`
	Duration       int    `json:"duration"`
	StartDate      string `json:"startDate"`
	DailyStudyTime *int   `json:"dailyStudyTime"`
	LearningGoal   string `json:"learningGoal"`
}

// UpdatePreferenceRequest is the body of PATCH /preferences/:id. Nil fields
// are left unchanged.
type UpdatePreferenceRequest struct {
	Subject        *string `json:"subject"`
	Level          *string `json:"level"`
	Duration       *int    `json:"duration"`
	StartDate      *string `json:"startDate"`
	DailyStudyTime *int    `json:"dailyStudyTime"`
	LearningGoal   *string `json:"learningGoal"`
}

// --- Response DTOs ---

// PreferenceResponse is the wire form of a Preference.
type PreferenceResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Subject        string    `json:"subject"`
	Level          string    `json:"level"`
	Duration       int       `json:"duration"`
	StartDate      string    `json:"startDate"`
	DailyStudyTime int       `json:"dailyStudyTime"`
	LearningGoal   string    `json:"learningGoal"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *Preference) toResponse() PreferenceResponse {
	return PreferenceResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Subject:        p.Subject,
		Level:          p.Level,
		Duration:       p.DurationWeeks,
		StartDate:      p.StartDate.Format(dateLayout),
		DailyStudyTime: p.DailyStudyMinutes,
		LearningGoal:   p.LearningGoal,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
