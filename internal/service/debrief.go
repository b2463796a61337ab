package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/phrazzld/viva-api/internal/task"
)

const (
	debriefMaxTokens = 600
	debriefMaxTips   = 5
)

const debriefSystemPrompt = `You are a senior consultant giving a short debrief after a medical oral exam.
Write to the candidate in the second person. Be specific and constructive.
Return JSON only: {"summary": string, "tips": [string]} with at most 5 tips.`

// DebriefDependencies are the collaborators of Debriefer.
type DebriefDependencies struct {
	DB       *sql.DB
	Cases    store.CaseStore
	Sessions store.SessionStore
	Drills   store.DrillStore
	Streaks  store.StreakStore
	Settings store.SettingsStore
	Examiner *examiner.Examiner
	// LLM is optional. It enriches the debrief of AI mode sessions.
	LLM    llm.Client
	Logger *slog.Logger
	Now    func() time.Time
}

// Debriefer produces the debrief of a finished session: feedback, drills
// seeded from the weakest checklist items, and streak activity. It is run by
// the background task runner and is idempotent.
type Debriefer struct {
	db       *sql.DB
	cases    store.CaseStore
	sessions store.SessionStore
	drills   store.DrillStore
	streaks  store.StreakStore
	settings store.SettingsStore
	examiner *examiner.Examiner
	llm      llm.Client
	logger   *slog.Logger
	now      func() time.Time
}

var _ task.Debriefer = (*Debriefer)(nil)

// NewDebriefer validates deps and creates the debriefer.
func NewDebriefer(deps DebriefDependencies) (*Debriefer, error) {
	if deps.DB == nil || deps.Cases == nil || deps.Sessions == nil ||
		deps.Drills == nil || deps.Streaks == nil || deps.Settings == nil {
		return nil, &ServiceError{Service: "debrief", Operation: "create_service", Message: "all stores and the db are required"}
	}
	if deps.Examiner == nil {
		deps.Examiner = examiner.New(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Debriefer{
		db:       deps.DB,
		cases:    deps.Cases,
		sessions: deps.Sessions,
		drills:   deps.Drills,
		streaks:  deps.Streaks,
		settings: deps.Settings,
		examiner: deps.Examiner,
		llm:      deps.LLM,
		logger:   deps.Logger.With("component", "debriefer"),
		now:      deps.Now,
	}, nil
}

// Debrief implements task.Debriefer.
func (d *Debriefer) Debrief(ctx context.Context, sessionID uuid.UUID) error {
	session, err := d.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return newError("debrief", "load_session", "failed to load session", err)
	}
	if session.Feedback != nil {
		d.logger.InfoContext(ctx, "session already debriefed", "session_id", sessionID)
		return nil
	}
	if session.IsActive() {
		return newError("debrief", "load_session", "cannot debrief", ErrSessionActive)
	}

	c, err := d.cases.Get(ctx, session.CaseID)
	if err != nil {
		return newError("debrief", "load_case", "failed to load case", err)
	}
	transcript, err := d.sessions.Messages(ctx, sessionID)
	if err != nil {
		return newError("debrief", "load_transcript", "failed to load transcript", err)
	}
	settings, err := d.settings.Get(ctx, session.UserID)
	if err != nil {
		return newError("debrief", "load_settings", "failed to load settings", err)
	}

	params := d.examiner.WithStrictness(session.Strictness).Params()
	now := d.now().UTC()
	feedback := examiner.BuildFeedback(c, transcript, params, now)
	if session.Mode == domain.ModeAI && d.llm != nil {
		d.enrich(ctx, c, &feedback)
	}

	weak := examiner.WeakestItems(examiner.PhaseCoverage(c, transcript), params.MaxDrills)
	activeAt := now
	if session.CompletedAt != nil {
		activeAt = *session.CompletedAt
	}
	day := domain.CalendarDay(activeAt, settings.Location())

	var created int
	err = store.RunInTransaction(ctx, d.db, func(ctx context.Context, tx *sql.Tx) error {
		txSessions := d.sessions.WithTx(tx)
		txDrills := d.drills.WithTx(tx)

		current, err := txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if current.Feedback != nil {
			return nil
		}

		existing, err := txDrills.CountBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if existing == 0 && len(weak) > 0 {
			drills, err := drillsFor(current, c, weak, now)
			if err != nil {
				return err
			}
			if err := txDrills.CreateMany(ctx, drills); err != nil {
				return err
			}
			created = len(drills)
		}

		if err := recordActivity(ctx, d.streaks.WithTx(tx), current.UserID, day, now); err != nil {
			return err
		}

		current.Feedback = &feedback
		current.UpdatedAt = now
		return txSessions.Update(ctx, current)
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to store debrief", "error", err, "session_id", sessionID)
		return newError("debrief", "store", "failed to store debrief", err)
	}

	d.logger.InfoContext(ctx, "session debriefed",
		"session_id", sessionID,
		"percent", feedback.Score.Percent,
		"drills_created", created,
		"tips", len(feedback.Tips))
	return nil
}

type aiDebrief struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}

// enrich adds model-written summary and tips. Any failure keeps the
// rule-based summary.
func (d *Debriefer) enrich(ctx context.Context, c *domain.Case, fb *domain.Feedback) {
	resp, err := d.llm.Complete(ctx, llm.Request{
		System:    debriefSystemPrompt,
		Messages:  []llm.ChatMessage{{Role: llm.RoleUser, Content: debriefPrompt(c, fb)}},
		JSON:      true,
		MaxTokens: debriefMaxTokens,
	})
	var out aiDebrief
	if err == nil {
		out, err = llm.ExtractJSON[aiDebrief](resp.Text)
	}
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			d.logger.WarnContext(ctx, "ai debrief failed, keeping rule-based summary", "error", err)
		}
		return
	}

	if s := strings.TrimSpace(out.Summary); s != "" {
		fb.Summary = s
	}
	for _, tip := range out.Tips {
		if tip = strings.TrimSpace(tip); tip != "" && len(fb.Tips) < debriefMaxTips {
			fb.Tips = append(fb.Tips, tip)
		}
	}
}

func debriefPrompt(c *domain.Case, fb *domain.Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s (%s)\n", c.Title, c.Specialty)
	fmt.Fprintf(&b, "Score: %d%% (grade %.1f/5, %s)\n", fb.Score.Percent, fb.Score.Grade, passLabel(fb.Score.Passed))
	for _, p := range fb.Phases {
		fmt.Fprintf(&b, "%s: covered [%s]; missed [%s]\n",
			p.Phase.Title(), strings.Join(p.Strengths, ", "), strings.Join(p.Gaps, ", "))
	}
	if len(fb.RedFlags) > 0 {
		fmt.Fprintf(&b, "Dangerous statements: %s\n", strings.Join(fb.RedFlags, ", "))
	}
	if len(fb.MissedFollowUps) > 0 {
		fmt.Fprintf(&b, "Follow-up questions left unanswered: %s\n", strings.Join(fb.MissedFollowUps, ", "))
	}
	for _, n := range fb.Notes {
		fmt.Fprintf(&b, "Note: %s\n", n)
	}
	fmt.Fprintf(&b, "Examiner summary: %s", fb.Summary)
	return b.String()
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

// drillsFor turns the weakest items into drills.
func drillsFor(session *domain.Session, c *domain.Case, weak []examiner.WeakItem, now time.Time) ([]*domain.Drill, error) {
	drills := make([]*domain.Drill, 0, len(weak))
	for _, w := range weak {
		d, err := domain.NewDrill(session.UserID, session.ID, c.ID, w.Phase, w.Item, drillPrompt(c, w), now)
		if err != nil {
			return nil, err
		}
		drills = append(drills, d)
	}
	return drills, nil
}

func drillPrompt(c *domain.Case, w examiner.WeakItem) string {
	if p := strings.TrimSpace(w.Item.Prompt); p != "" {
		return p
	}
	return fmt.Sprintf("%s, %s: what about %s?", c.Title, strings.ToLower(w.Phase.Title()), strings.ToLower(w.Item.Label))
}

// recordActivity marks day as active in the user's streak.
func recordActivity(ctx context.Context, streaks store.StreakStore, userID uuid.UUID, day, now time.Time) error {
	streak, err := streaks.Get(ctx, userID)
	if err != nil {
		return err
	}
	next := streak.RecordActivity(day)
	if next.LastActiveDay == streak.LastActiveDay {
		return nil
	}
	next.UserID = userID
	next.UpdatedAt = now
	return streaks.Upsert(ctx, &next)
}
