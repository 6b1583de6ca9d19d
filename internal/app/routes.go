package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/plugins/auth"
	"github.com/vishwatech/studyplan/internal/plugins/leaderboard"
	"github.com/vishwatech/studyplan/internal/plugins/plans"
	"github.com/vishwatech/studyplan/internal/plugins/preferences"
	"github.com/vishwatech/studyplan/internal/plugins/quiz"
	"github.com/vishwatech/studyplan/internal/plugins/smtp"
)

// healthTimeout bounds the store pings behind /healthz.
const healthTimeout = 2 * time.Second

// RegisterRoutes builds every plugin from the shared infrastructure and
// mounts its routes. This is the single place where plugins are wired.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config

	// Health check for container orchestration.
	e.GET("/healthz", a.healthz)

	// --- Plugin wiring ---

	// smtp: outbound mail. Development without SMTP logs instead of sending.
	mailService := smtp.NewMailService(cfg.Mail, cfg.IsDevelopment())

	// auth: registration, OTP verification, sign-in and the session gate.
	authService := auth.NewAuthService(
		auth.NewUserRepository(a.DB),
		auth.NewPendingStore(a.Redis),
		mailService,
		auth.NewTokenCodec(cfg.Auth.SecretKey),
		auth.Options{
			PendingTTL:  cfg.Auth.PendingTTL,
			SessionTTL:  cfg.Auth.SessionTTL,
			BcryptCost:  cfg.Auth.BcryptCost,
			OTPLength:   cfg.Auth.OTPLength,
			MailTimeout: cfg.Mail.Timeout,
		},
	)
	auth.RegisterRoutes(e, auth.NewHandler(authService), authService)
	requireAuth := auth.RequireAuth(authService)

	// preferences: per-user study preferences.
	prefService := preferences.NewPreferenceService(preferences.NewPreferenceRepository(a.DB))
	preferences.RegisterRoutes(e, preferences.NewHandler(prefService), requireAuth)

	// leaderboard: public boards, protected standing and activity.
	lbService := leaderboard.NewLeaderboardService(leaderboard.NewLeaderboardRepository(a.DB))
	leaderboard.RegisterRoutes(e, leaderboard.NewHandler(lbService), requireAuth)

	// plans: week-by-week plans generated from a preference.
	planService := plans.NewPlanService(plans.NewPlanRepository(a.DB), prefService)
	plans.RegisterRoutes(e, plans.NewHandler(planService), requireAuth)

	// quiz: module quizzes, graded here; a first pass completes the module
	// and earns leaderboard points.
	quizService := quiz.NewQuizService(quiz.NewQuizRepository(a.DB), planService, lbService)
	quiz.RegisterRoutes(e, quiz.NewHandler(quizService), requireAuth)
}

// healthz reports 200 when MariaDB and Redis answer, 503 otherwise.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := a.ping(ctx); err != nil {
		slog.Warn("health check failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
