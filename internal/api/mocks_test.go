package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/service"
)

type mockSessionService struct {
	StartFn    func(ctx context.Context, userID uuid.UUID, caseID string) (*domain.Session, error)
	AnswerFn   func(ctx context.Context, userID, sessionID uuid.UUID, text string) (*service.AnswerResult, error)
	GetFn      func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)
	ListFn     func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error)
	FinishFn   func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)
	FeedbackFn func(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Feedback, error)
}

var _ service.SessionService = (*mockSessionService)(nil)

func (m *mockSessionService) Start(ctx context.Context, userID uuid.UUID, caseID string) (*domain.Session, error) {
	return m.StartFn(ctx, userID, caseID)
}

func (m *mockSessionService) Answer(ctx context.Context, userID, sessionID uuid.UUID, text string) (*service.AnswerResult, error) {
	return m.AnswerFn(ctx, userID, sessionID, text)
}

func (m *mockSessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	return m.GetFn(ctx, userID, sessionID)
}

func (m *mockSessionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	return m.ListFn(ctx, userID, limit, offset)
}

func (m *mockSessionService) Finish(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	return m.FinishFn(ctx, userID, sessionID)
}

func (m *mockSessionService) Feedback(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Feedback, error) {
	return m.FeedbackFn(ctx, userID, sessionID)
}

type mockDrillService struct {
	ListFn     func(ctx context.Context, userID uuid.UUID, all bool, limit int) ([]*domain.Drill, error)
	AttemptFn  func(ctx context.Context, userID, drillID uuid.UUID, text string) (*service.DrillAttemptResult, error)
	PostponeFn func(ctx context.Context, userID, drillID uuid.UUID, days int) (*domain.Drill, error)
}

var _ service.DrillService = (*mockDrillService)(nil)

func (m *mockDrillService) List(ctx context.Context, userID uuid.UUID, all bool, limit int) ([]*domain.Drill, error) {
	return m.ListFn(ctx, userID, all, limit)
}

func (m *mockDrillService) Attempt(ctx context.Context, userID, drillID uuid.UUID, text string) (*service.DrillAttemptResult, error) {
	return m.AttemptFn(ctx, userID, drillID, text)
}

func (m *mockDrillService) Postpone(ctx context.Context, userID, drillID uuid.UUID, days int) (*domain.Drill, error) {
	return m.PostponeFn(ctx, userID, drillID, days)
}

type mockUserService struct {
	RegisterFn     func(ctx context.Context, email, password string) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return m.RegisterFn(ctx, email, password)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return m.AuthenticateFn(ctx, email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.GetUserFn(ctx, userID)
}

type mockStreakService struct {
	GetFn func(ctx context.Context, userID uuid.UUID) (*service.StreakView, error)
}

func (m *mockStreakService) Get(ctx context.Context, userID uuid.UUID) (*service.StreakView, error) {
	return m.GetFn(ctx, userID)
}

type mockSettingsService struct {
	GetFn    func(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
	UpdateFn func(ctx context.Context, userID uuid.UUID, update service.SettingsUpdate) (*domain.Settings, error)
}

func (m *mockSettingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	return m.GetFn(ctx, userID)
}

func (m *mockSettingsService) Update(ctx context.Context, userID uuid.UUID, update service.SettingsUpdate) (*domain.Settings, error) {
	return m.UpdateFn(ctx, userID, update)
}
