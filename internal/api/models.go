package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/service"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by the auth endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string `json:"expires_at"`
}

// CasePhaseResponse is the public part of one phase script.
type CasePhaseResponse struct {
	Phase    domain.Phase `json:"phase"`
	Title    string       `json:"title"`
	Question string       `json:"question,omitempty"`
}

// CaseDetailResponse is a case without its checklists.
type CaseDetailResponse struct {
	domain.CaseSummary
	Phases []CasePhaseResponse `json:"phases"`
}

// StartSessionRequest is the body of POST /sessions.
type StartSessionRequest struct {
	CaseID string `json:"case_id" validate:"required,max=100"`
}

// AnswerRequest is the body of POST /sessions/{id}/answers.
type AnswerRequest struct {
	Text string `json:"text" validate:"required,max=8000"`
}

// AnswerResponse is the examiner's reply to an answer.
type AnswerResponse struct {
	Session  *domain.Session `json:"session"`
	Answer   domain.Message  `json:"answer"`
	Reply    domain.Message  `json:"reply"`
	Done     bool            `json:"done"`
	RedFlags []string        `json:"red_flags,omitempty"`
}

// PendingResponse is returned with 202 while a debrief is being produced.
type PendingResponse struct {
	Status string `json:"status"`
}

// DrillResponse is the client view of a drill. Keywords stay hidden.
type DrillResponse struct {
	ID                 uuid.UUID          `json:"id"`
	SessionID          uuid.UUID          `json:"session_id"`
	CaseID             string             `json:"case_id"`
	Phase              domain.Phase       `json:"phase"`
	Label              string             `json:"label"`
	Prompt             string             `json:"prompt"`
	Status             domain.DrillStatus `json:"status"`
	ConsecutiveCorrect int                `json:"consecutive_correct"`
	AttemptCount       int                `json:"attempt_count"`
	NextDueAt          time.Time          `json:"next_due_at"`
}

// DrillAttemptRequest is the body of POST /drills/{id}/attempts.
type DrillAttemptRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// DrillAttemptResponse is the graded result of an attempt.
type DrillAttemptResponse struct {
	Drill     DrillResponse       `json:"drill"`
	Outcome   domain.DrillOutcome `json:"outcome"`
	Matched   []string            `json:"matched"`
	Completed bool                `json:"completed"`
}

// PostponeDrillRequest is the body of POST /drills/{id}/postpone.
type PostponeDrillRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// SettingsRequest is the body of PUT /settings. Omitted fields are kept.
type SettingsRequest struct {
	ExaminerMode   *domain.ExaminerMode `json:"examiner_mode,omitempty"    validate:"omitempty,oneof=rules ai"`
	Strictness     *domain.Strictness   `json:"strictness,omitempty"       validate:"omitempty,oneof=lenient standard strict"`
	Timezone       *string              `json:"timezone,omitempty"         validate:"omitempty,min=1,max=64"`
	DailyDrillGoal *int                 `json:"daily_drill_goal,omitempty" validate:"omitempty,min=1,max=50"`
}

func (r SettingsRequest) toUpdate() service.SettingsUpdate {
	return service.SettingsUpdate{
		ExaminerMode:   r.ExaminerMode,
		Strictness:     r.Strictness,
		Timezone:       r.Timezone,
		DailyDrillGoal: r.DailyDrillGoal,
	}
}

// ChatMessageRequest is one message of a chat request.
type ChatMessageRequest struct {
	Role    string `json:"role"    validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=16000"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	System   string               `json:"system,omitempty" validate:"max=8000"`
	Messages []ChatMessageRequest `json:"messages"         validate:"required,min=1,max=50,dive"`
	JSON     bool                 `json:"json,omitempty"`
}

// ChatResponse is the model's reply. JSON is set when the request asked for
// JSON and the reply parsed.
type ChatResponse struct {
	Text  string `json:"text"`
	JSON  any    `json:"json,omitempty"`
	Model string `json:"model,omitempty"`
}

func drillToResponse(d *domain.Drill) DrillResponse {
	return DrillResponse{
		ID:                 d.ID,
		SessionID:          d.SessionID,
		CaseID:             d.CaseID,
		Phase:              d.Phase,
		Label:              d.Label,
		Prompt:             d.Prompt,
		Status:             d.Status,
		ConsecutiveCorrect: d.ConsecutiveCorrect,
		AttemptCount:       d.AttemptCount,
		NextDueAt:          d.NextDueAt,
	}
}

func caseToDetail(c *domain.Case) CaseDetailResponse {
	out := CaseDetailResponse{CaseSummary: c.Summary()}
	for _, p := range domain.Phases {
		script := c.Script(p)
		if script.Question == "" && len(script.Checklist) == 0 {
			continue
		}
		out.Phases = append(out.Phases, CasePhaseResponse{Phase: p, Title: p.Title(), Question: script.Question})
	}
	return out
}
