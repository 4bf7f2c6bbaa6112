// Package app wires the herosg runtime: config, logging, persistence, and
// the HTTP server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"herosg/internal/api"
	"herosg/internal/auth"
	"herosg/internal/auth/session"
	"herosg/internal/booking"
	"herosg/internal/directory"
	"herosg/internal/identity"
	"herosg/internal/mailer"
	"herosg/internal/security/token"
)

// App owns the process-wide resources: the pgx pool, the wired handler and
// the HTTP server configuration.
type App struct {
	cfg Config
	log Logger

	pool    *pgxpool.Pool
	handler *api.Handler
	metrics *Metrics
}

// New constructs a fully wired App. The pool lifecycle belongs here; stores
// borrow it and never close it.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	accounts, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	gps, err := directory.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	requests, err := booking.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	codec, err := token.NewCodec(cfg.TokenEncryptSecret, cfg.TokenSignSecret)
	if err != nil {
		pool.Close()
		return nil, err
	}
	authenticator := auth.NewAuthenticator(log, accounts, session.NewPostgresStore(pool), codec)

	opts := []api.HandlerOption{}
	if cfg.SMTPAddr != "" {
		sender, err := mailer.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
		if err != nil {
			pool.Close()
			return nil, err
		}
		opts = append(opts, api.WithMailer(sender, cfg.BaseURL))
		log.Info("mailer.smtp.enabled", "addr", cfg.SMTPAddr)
	} else {
		log.Info("mailer.disabled.noop")
	}

	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		handler: api.NewHandler(log, accounts, gps, requests, authenticator, opts...),
		metrics: NewMetrics(),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()
	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
