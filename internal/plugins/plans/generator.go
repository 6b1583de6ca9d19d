package plans

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// Params describes the plan to generate.
type Params struct {
	Subject   string
	Level     string
	Weeks     int
	StartDate time.Time
}

// Generate lays the catalog topics for the subject and level over the
// requested weeks. Topics are spread evenly, ceil(topics/weeks) per week,
// so short plans are dense and long plans end with empty weeks. Weeks past
// the halfway point of the topic list get a project. IDs are left empty.
func Generate(in Params) *Plan {
	track := resolveTrack(in.Subject)
	level := in.Level
	if !validLevels[level] {
		level = "beginner"
	}
	weeks := in.Weeks
	if weeks < 1 {
		weeks = 1
	}
	topics := topicCatalog[track][level]
	ideas := projectCatalog[track]

	p := &Plan{
		Subject:       in.Subject,
		Track:         track,
		Level:         level,
		DurationWeeks: weeks,
		StartDate:     in.StartDate,
		Overview:      fmt.Sprintf("%d-week comprehensive %s study plan for %s level", weeks, in.Subject, level),
	}

	perWeek := (len(topics) + weeks - 1) / weeks
	next := 0
	for week := 1; week <= weeks && next < len(topics); week++ {
		start := weekStart(in.StartDate, week)
		end := start.AddDate(0, 0, 6)

		var covered []string
		for ; next < len(topics) && len(covered) < perWeek; next++ {
			topic := topics[next]
			covered = append(covered, topic)
			p.Modules = append(p.Modules, Module{
				Position:       next + 1,
				Week:           week,
				Title:          topic,
				Description:    fmt.Sprintf("Learn about %s in %s", topic, in.Subject),
				StartDate:      start,
				EndDate:        end,
				EstimatedHours: hoursPerTopic,
				Resources:      topicResources(track, topic, next),
			})
		}

		if next > len(topics)/2 && len(ideas) > 0 {
			idea := ideas[(week-1)%len(ideas)]
			p.Projects = append(p.Projects, Project{
				Week:           week,
				Title:          idea,
				Description:    "A project to demonstrate your understanding of " + strings.Join(covered, ", "),
				Difficulty:     projectDifficulty,
				EstimatedHours: minProjectHours + (hoursPerTopic*len(covered))%10,
				Resources: []Resource{
					{Title: "Project Guide", Type: "article", URL: "https://example.com/projects/" + slug(idea)},
					{Title: "Example Implementation", Type: "github", URL: "https://github.com/example/" + slug(idea)},
				},
			})
		}
	}
	p.TotalModules = len(p.Modules)
	return p
}

func weekStart(start time.Time, week int) time.Time {
	return start.AddDate(0, 0, (week-1)*7)
}

// topicResources returns an article and a video for every topic, plus a
// practice set on every other one.
func topicResources(track, topic string, index int) []Resource {
	s := slug(topic)
	out := []Resource{
		{Title: topic + " Documentation", Type: "article", URL: "https://docs.example.com/" + track + "/" + s},
		{Title: topic + " Tutorial", Type: "video", URL: "https://www.youtube.com/results?search_query=" + url.QueryEscape(track+" "+topic)},
	}
	if index%2 == 0 {
		out = append(out, Resource{Title: topic + " Practice", Type: "practice", URL: "https://practice.example.com/" + track + "/" + s})
	}
	return out
}

// slug lowercases s and joins its letter and digit runs with hyphens.
func slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
