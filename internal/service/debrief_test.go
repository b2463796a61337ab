package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type debriefFixture struct {
	sessions *mocks.SessionStore
	drills   *mocks.DrillStore
	streaks  *mocks.StreakStore
	svc      SessionService
	userID   uuid.UUID
	newDeb   func(client llm.Client) *Debriefer
}

func newDebriefFixture(t *testing.T, mode domain.ExaminerMode) *debriefFixture {
	t.Helper()
	db, mock := txDB(t)
	expectTxs(mock, 20)

	userID := uuid.New()
	caseStore := mocks.NewCaseStore(builtinCase(t, "acute-chest-pain"))
	settings := mocks.NewSettingsStore(settingsFor(userID, mode))
	f := &debriefFixture{
		sessions: mocks.NewSessionStore(),
		drills:   mocks.NewDrillStore(),
		streaks:  mocks.NewStreakStore(),
		userID:   userID,
	}
	svc, err := NewSessionService(SessionDependencies{
		DB:       db,
		Cases:    caseStore,
		Sessions: f.sessions,
		Settings: settings,
		Emitter:  &recordingEmitter{},
		Logger:   quietLogger(),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	f.svc = svc

	f.newDeb = func(client llm.Client) *Debriefer {
		d, err := NewDebriefer(DebriefDependencies{
			DB:       db,
			Cases:    caseStore,
			Sessions: f.sessions,
			Drills:   f.drills,
			Streaks:  f.streaks,
			Settings: settings,
			LLM:      client,
			Logger:   quietLogger(),
			Now:      func() time.Time { return fixedNow.Add(time.Minute) },
		})
		require.NoError(t, err)
		return d
	}
	return f
}

// finishedSession answers the history phase and stops early, leaving the
// later phases uncovered.
func (f *debriefFixture) finishedSession(t *testing.T) *domain.Session {
	t.Helper()
	ctx := context.Background()
	session, err := f.svc.Start(ctx, f.userID, "acute-chest-pain")
	require.NoError(t, err)
	_, err = f.svc.Answer(ctx, f.userID, session.ID, "Onset and character of the pain, radiation to the jaw, and sweating.")
	require.NoError(t, err)
	finished, err := f.svc.Finish(ctx, f.userID, session.ID)
	require.NoError(t, err)
	return finished
}

func TestDebriefer_ProducesFeedbackDrillsAndStreak(t *testing.T) {
	f := newDebriefFixture(t, domain.ModeRules)
	ctx := context.Background()
	session := f.finishedSession(t)

	llmCalled := false
	client := llm.ClientFunc(func(context.Context, llm.Request) (*llm.Response, error) {
		llmCalled = true
		return nil, errors.New("unexpected call")
	})
	require.NoError(t, f.newDeb(client).Debrief(ctx, session.ID))
	assert.False(t, llmCalled, "rules mode sessions are debriefed without the model")

	fb, err := f.svc.Feedback(ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, fb.Summary)
	assert.Equal(t, session.Score.Percent, fb.Score.Percent)
	assert.Empty(t, fb.Tips)

	count, err := f.drills.CountBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	drills, err := f.drills.ListByUser(ctx, f.userID, false, fixedNow, 0)
	require.NoError(t, err)
	for _, d := range drills {
		assert.Equal(t, "acute-chest-pain", d.CaseID)
		assert.Equal(t, domain.DrillStatusPending, d.Status)
		assert.NotEmpty(t, d.Prompt)
		assert.NotEqual(t, domain.PhaseIntro, d.Phase, "history was covered best")
	}

	streak, err := f.streaks.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
	require.NotNil(t, streak.LastActiveDay)
	assert.Equal(t, domain.CalendarDay(fixedNow, time.UTC), *streak.LastActiveDay)
}

func TestDebriefer_IsIdempotent(t *testing.T) {
	f := newDebriefFixture(t, domain.ModeRules)
	ctx := context.Background()
	session := f.finishedSession(t)
	d := f.newDeb(nil)

	require.NoError(t, d.Debrief(ctx, session.ID))
	first, err := f.svc.Feedback(ctx, f.userID, session.ID)
	require.NoError(t, err)

	require.NoError(t, d.Debrief(ctx, session.ID))
	second, err := f.svc.Feedback(ctx, f.userID, session.ID)
	require.NoError(t, err)

	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
	count, err := f.drills.CountBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, f.streaks.Upserts)
}

func TestDebriefer_AIModeEnrichesFeedback(t *testing.T) {
	f := newDebriefFixture(t, domain.ModeAI)
	ctx := context.Background()
	session := f.finishedSession(t)

	var req llm.Request
	client := llm.ClientFunc(func(_ context.Context, r llm.Request) (*llm.Response, error) {
		req = r
		return &llm.Response{Text: "```json\n" + `{"summary": "Good start, but you stopped before the differential.", "tips": ["Always list aortic dissection.", " ", "Order an ECG first."]}` + "\n```"}, nil
	})
	require.NoError(t, f.newDeb(client).Debrief(ctx, session.ID))

	assert.True(t, req.JSON)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Acute chest pain")

	fb, err := f.svc.Feedback(ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Good start, but you stopped before the differential.", fb.Summary)
	assert.Equal(t, []string{"Always list aortic dissection.", "Order an ECG first."}, fb.Tips)
}

func TestDebriefer_AIFailureKeepsRuleSummary(t *testing.T) {
	f := newDebriefFixture(t, domain.ModeAI)
	ctx := context.Background()
	session := f.finishedSession(t)

	rules := newDebriefFixture(t, domain.ModeRules)
	rulesSession := rules.finishedSession(t)
	require.NoError(t, rules.newDeb(nil).Debrief(ctx, rulesSession.ID))
	want, err := rules.svc.Feedback(ctx, rules.userID, rulesSession.ID)
	require.NoError(t, err)

	client := llm.ClientFunc(func(context.Context, llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "not json at all"}, nil
	})
	require.NoError(t, f.newDeb(client).Debrief(ctx, session.ID))

	fb, err := f.svc.Feedback(ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Summary, fb.Summary)
	assert.Empty(t, fb.Tips)
}

func TestDebriefer_RejectsActiveSession(t *testing.T) {
	f := newDebriefFixture(t, domain.ModeRules)
	ctx := context.Background()
	session, err := f.svc.Start(ctx, f.userID, "acute-chest-pain")
	require.NoError(t, err)

	err = f.newDeb(nil).Debrief(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionActive)

	err = f.newDeb(nil).Debrief(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordActivity(t *testing.T) {
	ctx := context.Background()
	streaks := mocks.NewStreakStore()
	userID := uuid.New()
	day := domain.CalendarDay(fixedNow, time.UTC)

	require.NoError(t, recordActivity(ctx, streaks, userID, day, fixedNow))
	require.NoError(t, recordActivity(ctx, streaks, userID, day, fixedNow))
	assert.Equal(t, 1, streaks.Upserts, "same day is recorded once")

	require.NoError(t, recordActivity(ctx, streaks, userID, day.AddDate(0, 0, 1), fixedNow))
	s, err := streaks.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, 2, s.Longest)
}
