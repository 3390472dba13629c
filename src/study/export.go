package study

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// csvHeader is the flattened export layout: one row per task result, session
// fields repeated. Sessions without tasks still get one row so consent-only
// dropouts appear in the export.
var csvHeader = []string{
	"session_id", "started_at", "consent_given", "age_band", "profession",
	"chart_familiarity", "task_id", "layout", "answer", "correct",
	"time_to_answer_ms", "interactions", "questionnaire", "completed_at",
}

// WriteSessionsCSV writes all sessions in the flattened one-row-per-task
// layout used for statistical analysis.
func WriteSessionsCSV(w io.Writer, sessions []*Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range sessions {
		base := []string{
			s.ID,
			s.StartedAt.Format(time.RFC3339),
			strconv.FormatBool(s.ConsentGiven),
			s.Demographics.AgeBand,
			s.Demographics.Profession,
			s.Demographics.ChartFamiliarity,
		}
		tail := []string{questionnaireField(s.Questionnaire), completedField(s)}
		if len(s.Tasks) == 0 {
			record := append(append(append([]string{}, base...), "", "", "", "", "", ""), tail...)
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write session %s: %w", s.ID, err)
			}
			continue
		}
		for _, t := range s.Tasks {
			record := append(append(append([]string{}, base...),
				t.TaskID,
				t.Layout,
				t.Answer,
				strconv.FormatBool(t.Correct),
				strconv.FormatInt(t.TimeToAnswerMs, 10),
				strconv.Itoa(t.Interactions),
			), tail...)
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write session %s task %s: %w", s.ID, t.TaskID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// questionnaireField flattens Likert answers to "q1=4;q2=5" with stable key order.
func questionnaireField(q QuestionnaireResponse) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ";"
		}
		out += k + "=" + strconv.Itoa(q[k])
	}
	return out
}

func completedField(s *Session) string {
	if s.CompletedAt == nil {
		return ""
	}
	return s.CompletedAt.Format(time.RFC3339)
}

// WriteSessionsJSON writes all sessions as an indented JSON array.
func WriteSessionsJSON(w io.Writer, sessions []*Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessions)
}
