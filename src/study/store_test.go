package study

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := NewSession()
	sess.RecordConsent()
	sess.Demographics = Demographics{AgeBand: "25-34", Profession: "hydrologist", ChartFamiliarity: "daily"}
	sess.RecordTask(TaskResult{TaskID: "t1", Layout: "separate", Answer: "march 11", Correct: true, TimeToAnswerMs: 8400, Interactions: 3})
	sess.RecordTask(TaskResult{TaskID: "t2", Layout: "single", Answer: "pm10", Correct: false, TimeToAnswerMs: 15200, Interactions: 7})
	sess.Questionnaire = QuestionnaireResponse{"sus1": 4, "sus2": 2}
	sess.Complete()

	require.NoError(t, s.PutSession(ctx, sess))
	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.ConsentGiven)
	assert.Equal(t, sess.Demographics, got.Demographics)
	assert.Equal(t, sess.Tasks, got.Tasks)
	assert.Equal(t, sess.Questionnaire, got.Questionnaire)
	assert.True(t, got.Completed())
}

func TestSessionUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := NewSession()
	require.NoError(t, s.PutSession(ctx, sess))
	sess.RecordTask(TaskResult{TaskID: "t1", Layout: "hybrid"})
	require.NoError(t, s.PutSession(ctx, sess))
	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "upsert must not duplicate")
}

func TestGetSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteSession(context.Background(), "missing"), ErrNotFound)
}

func TestFileCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := tabular.New("temps.csv", []string{"Date", "Temp"}, []tabular.Row{
		{"Date": tabular.TemporalTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "Temp": tabular.Number(7.2)},
		{"Date": tabular.TemporalTime(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)), "Temp": tabular.Missing()},
	})
	f.SetXAxis("Date")
	f.SetYAxes([]string{"Temp"})

	require.NoError(t, s.PutFile(ctx, f))
	got, err := s.GetFile(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Name, got.Name)
	assert.Equal(t, f.Columns, got.Columns)
	assert.Equal(t, f.Axes, got.Axes)
	assert.Equal(t, f.Styles, got.Styles)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, f.Rows[0]["Date"], got.Rows[0]["Date"], "temporal cells survive persistence")
	assert.True(t, got.Rows[1]["Temp"].IsMissing(), "missing cells survive persistence")

	require.NoError(t, s.DeleteFile(ctx, f.ID))
	_, err = s.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessionsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first, second := NewSession(), NewSession()
	require.NoError(t, s.PutSession(ctx, first))
	require.NoError(t, s.PutSession(ctx, second))
	got, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
