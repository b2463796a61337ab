package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/viva-api/internal/api"
	apiMiddleware "github.com/phrazzld/viva-api/internal/api/middleware"
	"github.com/phrazzld/viva-api/internal/api/shared"
)

func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	caseHandler := api.NewCaseHandler(app.caseStore, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	drillHandler := api.NewDrillHandler(app.drillService, app.logger)
	profileHandler := api.NewProfileHandler(app.streakService, app.settingsService, app.logger)
	chatHandler := api.NewChatHandler(app.llmClient,
		time.Duration(app.config.LLM.TimeoutSeconds)*time.Second, app.logger)
	aiLimiter := apiMiddleware.NewUserRateLimiter(app.config.Server.AIRequestsPerMinute, app.config.Server.AIBurst)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/cases", caseHandler.List)
			r.Get("/cases/{id}", caseHandler.Get)

			r.Post("/sessions", sessionHandler.Start)
			r.Get("/sessions", sessionHandler.List)
			r.Get("/sessions/{id}", sessionHandler.Get)
			r.Post("/sessions/{id}/answers", sessionHandler.Answer)
			r.Post("/sessions/{id}/finish", sessionHandler.Finish)
			r.Get("/sessions/{id}/feedback", sessionHandler.Feedback)

			r.Get("/drills", drillHandler.List)
			r.Post("/drills/{id}/attempts", drillHandler.Attempt)
			r.Post("/drills/{id}/postpone", drillHandler.Postpone)

			r.Get("/streak", profileHandler.Streak)
			r.Get("/settings", profileHandler.GetSettings)
			r.Put("/settings", profileHandler.UpdateSettings)

			r.With(aiLimiter.Limit).Post("/ai/chat", chatHandler.Chat)
		})
	})

	r.Get("/health", app.health)
	return r
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
