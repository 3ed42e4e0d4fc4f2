package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-auth/internal/config"
	"account-auth/internal/httpx"
	"account-auth/internal/mail"
	"account-auth/internal/observability/logging"
	"account-auth/internal/observability/metrics"
	"account-auth/internal/ratelimit"
	"account-auth/internal/service"
	impl "account-auth/internal/service/impl"
	"account-auth/internal/store"
	transport "account-auth/internal/transport/http"
	"account-auth/pkg/db"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const serviceName = "account-auth"

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// 1) DB
	gdb, err := db.OpenPostgres(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		return err
	}
	st := store.New(gdb)
	if cfg.RunMigrations {
		if err := st.RunMigrations(ctx); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// 2) Optional redis limiter
	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so an unreachable redis is not fatal.
			logger.Warn("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		}
		limiter = ratelimit.New(rdb, ratelimit.Config{
			MaxLoginAttempts:      cfg.LoginMaxAttempts,
			LoginCooldown:         cfg.LoginCooldown,
			MaxResetRequests:      cfg.ResetMaxRequests,
			ResetRequestCooldown:  cfg.ResetCooldown,
			EnableIPLoginThrottle: true,
		})
	}

	// 3) Mail
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}

	// 4) Services
	pw := impl.NewPasswordServiceArgon2id(impl.DefaultArgon2Params, cfg.HashConcurrency)
	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		TTL:        cfg.SessionTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	if err != nil {
		return err
	}
	users := impl.NewUserServiceImpl(st)
	auth := impl.NewAuthServiceImpl(st, pw, ts, mailer, logger).WithLimiter(limiter)
	reset := impl.NewPasswordResetServiceImpl(st, pw, mailer, cfg.ResetTTL, logger).WithLimiter(limiter)

	metrics.MustRegister(prometheus.DefaultRegisterer, serviceName)

	// 5) HTTP
	router := transport.NewRouter(transport.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPM: cfg.RateLimitRPM,
		TrustProxy:   cfg.TrustProxy,
		Logger:       logger,
	}, transport.Services{
		Auth:  auth,
		Reset: reset,
		Users: users,
	}, httpx.NewAuthenticator(ts, users))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer, "mail", cfg.MailProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMailer(cfg config.Config, logger *slog.Logger) (service.EmailService, error) {
	var sender mail.Sender = mail.LogSender{Logger: logger}
	if cfg.MailProvider == config.MailProviderSendGrid {
		sg, err := mail.NewSendGridSender(mail.SendGridConfig{
			APIKey: cfg.SendGridKey,
			From:   cfg.SendGridEmail,
		})
		if err != nil {
			return nil, err
		}
		sender = sg
	}
	return mail.NewService(sender, mail.Config{
		PublicBaseURL: cfg.PublicBaseURL,
		Timeout:       cfg.MailTimeout,
	}), nil
}
