package http

import (
	"net/http"

	"github.com/go-auth-gate/internal/application/admin"
	"github.com/go-auth-gate/internal/application/banlist"
	"github.com/go-auth-gate/internal/application/gate"
	"github.com/go-auth-gate/internal/application/session"
	"github.com/go-auth-gate/internal/application/verification"
	"github.com/go-auth-gate/internal/config"
	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-gate/internal/infrastructure/jwt"
	s3infra "github.com/go-auth-gate/internal/infrastructure/s3"
	"github.com/go-auth-gate/internal/infrastructure/smtp"
	"github.com/go-auth-gate/internal/infrastructure/sns"
	"github.com/go-auth-gate/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-gate/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ProfileRepo *dynamo.ProfileRepo
	SessionRepo *dynamo.SessionRepo
	CodeRepo    *dynamo.CodeRepo
	PendingRepo *dynamo.PendingAuthRepo
	BanRepo     *dynamo.BanRepo
	RoleRepo    *dynamo.RoleRepo
	AuditRepo   *dynamo.AuditRepo
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	Alerter     sns.SecurityAlerter // nil disables promotion alerts
	JWTProvider *jwtinfra.Provider  // required; a nil provider must never be wired
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if deps.JWTProvider == nil {
		panic("router: nil JWT provider")
	}
	authMw := appmiddleware.Auth(deps.JWTProvider)
	optAuthMw := appmiddleware.OptionalAuth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	banSvc := banlist.NewService(banlist.Deps{
		BanRepo:     deps.BanRepo,
		ProfileRepo: deps.ProfileRepo,
		SessionRepo: deps.SessionRepo,
		AuditRepo:   deps.AuditRepo,
	})
	codeSvc := verification.NewService(verification.Deps{
		CodeRepo:    deps.CodeRepo,
		Mailer:      deps.Mailer,
		CodeTTL:     cfg.CodeTTL,
		Cooldown:    cfg.ResendCooldown,
		MaxAttempts: cfg.MaxCodeAttempts,
	})
	gateSvc := gate.NewService(gate.Deps{
		Bans:        banSvc,
		Codes:       codeSvc,
		ProfileRepo: deps.ProfileRepo,
		PendingRepo: deps.PendingRepo,
		RoleRepo:    deps.RoleRepo,
		SessionRepo: deps.SessionRepo,
		AuditRepo:   deps.AuditRepo,
		Signer:      deps.JWTProvider,
		Alerter:     deps.Alerter,
		AdminSecret: cfg.AdminAccessSecret,
		PendingTTL:  cfg.PendingAuthTTL,
		ResendAfter: cfg.ResendCooldown,
		RefreshDur:  cfg.RefreshTokenDur,
	})
	sessionSvc := session.NewService(session.Deps{
		SessionRepo: deps.SessionRepo,
		ProfileRepo: deps.ProfileRepo,
		Signer:      deps.JWTProvider,
		RefreshDur:  cfg.RefreshTokenDur,
	})
	adminSvc := admin.NewService(admin.Deps{
		ProfileRepo: deps.ProfileRepo,
		AuditRepo:   deps.AuditRepo,
		Store:       deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(gateSvc)
	authH := handler.NewAuthHandler(gateSvc)
	accessH := handler.NewAccessHandler(banSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	adminH := handler.NewAdminHandler(banSvc, adminSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)

		r.With(sensitiveRL.Limit).Post("/verification/send", verificationH.Send)
		r.With(sensitiveRL.Limit).Post("/verification/verify", verificationH.Verify)

		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/verify", authH.Verify)
		r.With(sensitiveRL.Limit).Post("/auth/resend", authH.Resend)
		r.Post("/auth/abandon", authH.Abandon)

		r.With(optAuthMw).Get("/access/check", accessH.Check)

		r.Post("/sessions/refresh", sessionH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/admin/users", adminH.ListUsers)
				r.Post("/admin/users/{id}/deactivate", adminH.Deactivate)
				r.Post("/admin/users/{id}/reactivate", adminH.Reactivate)
				r.Get("/admin/users/{id}/audit", adminH.UserAudit)

				r.Post("/admin/bans/ips", adminH.BanIP)
				r.Delete("/admin/bans/ips/{ip}", adminH.UnbanIP)
				r.Post("/admin/bans/emails", adminH.BanEmail)
				r.Delete("/admin/bans/emails/{email}", adminH.UnbanEmail)

				r.Post("/admin/audit/export", adminH.ExportAudit)
			})
		})
	})

	return r
}
