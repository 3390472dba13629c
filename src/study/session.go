// Package study models participant sessions of the usability study (consent,
// demographics, per-task interaction metrics and questionnaire answers) and
// persists them to a local document store for later export.
package study

import (
	"time"

	"github.com/google/uuid"
)

// Demographics captures the pre-task participant questionnaire.
type Demographics struct {
	AgeBand          string `json:"age_band,omitempty"`
	Profession       string `json:"profession,omitempty"`
	ChartFamiliarity string `json:"chart_familiarity,omitempty"`
}

// TaskResult records one completed task under one layout condition.
type TaskResult struct {
	TaskID         string `json:"task_id"`
	Layout         string `json:"layout"` // composition mode shown for this task
	Answer         string `json:"answer"`
	Correct        bool   `json:"correct"`
	TimeToAnswerMs int64  `json:"time_to_answer_ms"`
	Interactions   int    `json:"interactions"`
}

// QuestionnaireResponse maps question id to a Likert-scale answer.
type QuestionnaireResponse map[string]int

// Session is one participant's full run through the study.
type Session struct {
	ID            string                `json:"id"`
	StartedAt     time.Time             `json:"started_at"`
	ConsentGiven  bool                  `json:"consent_given"`
	ConsentAt     *time.Time            `json:"consent_at,omitempty"`
	Demographics  Demographics          `json:"demographics"`
	Tasks         []TaskResult          `json:"tasks,omitempty"`
	Questionnaire QuestionnaireResponse `json:"questionnaire,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
}

// NewSession starts a session with a fresh participant id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
}

// RecordConsent marks consent as given now.
func (s *Session) RecordConsent() {
	now := time.Now().UTC()
	s.ConsentGiven = true
	s.ConsentAt = &now
}

// RecordTask appends one task result.
func (s *Session) RecordTask(tr TaskResult) {
	s.Tasks = append(s.Tasks, tr)
}

// Complete marks the session finished now.
func (s *Session) Complete() {
	now := time.Now().UTC()
	s.CompletedAt = &now
}

// Completed reports whether the participant reached the end of the flow.
func (s *Session) Completed() bool { return s.CompletedAt != nil }
