// Package plans turns a study preference into a week-by-week plan of modules
// drawn from a fixed topic catalog. Modules are completed by passing their
// quiz; the plan's progress is the share of completed modules.
package plans

import "time"

const (
	dateLayout = "2006-01-02"

	hoursPerTopic     = 3
	minProjectHours   = 8
	maxDurationWeeks  = 260
	projectDifficulty = "moderate"
)

var validLevels = map[string]bool{"beginner": true, "intermediate": true, "expert": true}

// Plan is a generated study plan. Weeks without a topic carry no modules.
type Plan struct {
	ID            string
	UserID        string
	PreferenceID  string
	Subject       string
	Track         string
	Level         string
	DurationWeeks int
	StartDate     time.Time
	Overview      string
	Progress      float64
	Modules       []Module
	Projects      []Project
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// TotalModules is kept on the row so listings need not load modules.
	TotalModules int
}

// Module is one topic of a plan, studied during its week.
type Module struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"-"`
	Position       int        `json:"position"`
	Week           int        `json:"week"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartDate      time.Time  `json:"-"`
	EndDate        time.Time  `json:"-"`
	EstimatedHours int        `json:"estimatedHours"`
	Resources      []Resource `json:"resources"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	QuizID         string     `json:"quizId,omitempty"`
}

// Resource is a study link attached to a module or project.
type Resource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// Project is the hands-on assignment of a week in the second half of a plan.
type Project struct {
	Week           int        `json:"week"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Difficulty     string     `json:"difficulty"`
	EstimatedHours int        `json:"estimatedHours"`
	Resources      []Resource `json:"resources"`
}

// ModuleRef is a module together with the plan facts the quiz flow needs.
type ModuleRef struct {
	Module
	Subject      string
	Level        string
	PlanProgress float64
}

// Completion reports the outcome of marking a module complete. Newly is
// false when the module had already been completed.
type Completion struct {
	PlanID   string
	Newly    bool
	Progress float64
}

// --- Request DTOs ---

// CreatePlanRequest is the body of POST /plans.
type CreatePlanRequest struct {
	PreferenceID string `json:"preferenceId"`
}

// PreviewRequest is the body of POST /plans/generate. Nothing is stored.
type PreviewRequest struct {
	Lang      string `json:"lang"`
	Level     string `json:"level"`
	Weeks     int    `json:"weeks"`
	StartDate string `json:"startDate"`
}

// --- Response DTOs ---

// PlanResponse is the wire form of a Plan. Weeks is omitted in listings.
type PlanResponse struct {
	ID           string         `json:"id,omitempty"`
	PreferenceID string         `json:"preferenceId,omitempty"`
	Subject      string         `json:"subject"`
	Track        string         `json:"track"`
	Level        string         `json:"level"`
	Duration     int            `json:"duration"`
	StartDate    string         `json:"startDate"`
	Overview     string         `json:"overview"`
	TotalModules int            `json:"totalModules"`
	Hours        int            `json:"estimatedHours"`
	Progress     float64        `json:"progress"`
	Weeks        []WeekResponse `json:"weeks,omitempty"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
}

// WeekResponse groups the modules and project of one week.
type WeekResponse struct {
	Week           int              `json:"week"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	EstimatedHours int              `json:"estimatedHours"`
	Modules        []ModuleResponse `json:"modules"`
	Project        *Project         `json:"project,omitempty"`
}

// ModuleResponse is the wire form of a Module.
type ModuleResponse struct {
	Module
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (p *Plan) toSummary() PlanResponse {
	resp := PlanResponse{
		ID:           p.ID,
		PreferenceID: p.PreferenceID,
		Subject:      p.Subject,
		Track:        p.Track,
		Level:        p.Level,
		Duration:     p.DurationWeeks,
		StartDate:    p.StartDate.Format(dateLayout),
		Overview:     p.Overview,
		TotalModules: p.TotalModules,
		Hours:        p.TotalModules * hoursPerTopic,
		Progress:     p.Progress,
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func (p *Plan) toResponse() PlanResponse {
	resp := p.toSummary()

	projects := make(map[int]*Project, len(p.Projects))
	for i := range p.Projects {
		projects[p.Projects[i].Week] = &p.Projects[i]
	}

	resp.Weeks = make([]WeekResponse, p.DurationWeeks)
	for i := range resp.Weeks {
		start := weekStart(p.StartDate, i+1)
		resp.Weeks[i] = WeekResponse{
			Week:      i + 1,
			StartDate: start.Format(dateLayout),
			EndDate:   start.AddDate(0, 0, 6).Format(dateLayout),
			Modules:   []ModuleResponse{},
			Project:   projects[i+1],
		}
	}
	for _, m := range p.Modules {
		if m.Week < 1 || m.Week > len(resp.Weeks) {
			continue
		}
		w := &resp.Weeks[m.Week-1]
		w.EstimatedHours += m.EstimatedHours
		w.Modules = append(w.Modules, ModuleResponse{
			Module:    m,
			StartDate: m.StartDate.Format(dateLayout),
			EndDate:   m.EndDate.Format(dateLayout),
		})
	}
	return resp
}
