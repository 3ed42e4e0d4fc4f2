package http

import (
	"log/slog"
	"net/http"
	"time"

	"account-auth/internal/httpx"
	"account-auth/internal/observability/middleware"
	"account-auth/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins []string
	// RateLimitRPM caps requests per client IP per minute; 0 disables it.
	RateLimitRPM int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	Logger     *slog.Logger
}

type Services struct {
	Auth  service.AuthService
	Reset service.PasswordResetService
	Users service.UserService
}

func NewRouter(cfg RouterConfig, svc Services, authn *httpx.Authenticator) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &handlers{auth: svc.Auth, reset: svc.Reset, users: svc.Users}

	r := chi.NewRouter()

	r.Use(middleware.WithRequestAndTrace)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.RateLimitRPM > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPM, time.Minute))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsOrAll(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID, middleware.HeaderTraceID},
		ExposedHeaders:   []string{"Authorization", middleware.HeaderRequestID},
		AllowCredentials: len(cfg.CORSOrigins) > 0,
		MaxAge:           300,
	}))
	r.Use(middleware.WithMetrics)
	r.Use(httpx.LogRequests(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Get("/verify-account/{verificationCode}", h.verifyAccount)
		r.Post("/login", h.login)
		r.Post("/reset-password", h.requestReset)
		r.Get("/reset-password/{resetToken}", h.checkReset)
		r.Put("/reset-password", h.saveReset)

		r.Group(func(pr chi.Router) {
			pr.Use(authn.Middleware)
			pr.Get("/", h.listUsers)
			pr.Get("/me", h.me)
			pr.Get("/{id}", h.getUser)
		})
	})

	return r
}

func originsOrAll(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
