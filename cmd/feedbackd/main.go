package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	adapthttp "feedback/internal/adapter/http"
	"feedback/internal/app"
	"feedback/internal/config"
	"feedback/internal/logging"
	"feedback/internal/store"
	"feedback/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	st, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("open store")
	}
	defer func() { _ = st.Close() }()

	authSvc := app.NewAuthService(st.Users, st.Sessions).
		WithBcryptCost(cfg.Auth.BcryptCost).
		WithSessionTTL(cfg.Session.TTL)
	feedbackSvc := app.NewFeedbackService(st.Feedback)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := adapthttp.New(authSvc, feedbackSvc, adapthttp.Options{
		WebDir:            cfg.Server.WebDir,
		CookieName:        cfg.Session.CookieName,
		CookieSecure:      cfg.Session.CookieSecure,
		SessionSecret:     sessionSecret(cfg.Session.Secret),
		CORSOrigins:       cfg.CORS.AllowedOrigins,
		RateLimitEnabled:  cfg.Auth.RateLimitEnabled,
		RateLimitRequests: cfg.Auth.RateLimitRequests,
		RateLimitWindow:   cfg.Auth.RateLimitWindow,
		Metrics:           cfg.Metrics.Enabled,
	})
	if cfg.SSO.Enabled {
		sso, err := adapthttp.NewSSO(ctx, cfg.SSO.IssuerURL, cfg.SSO.ClientID, cfg.SSO.ClientSecret, cfg.SSO.RedirectURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("configure sso")
		}
		srv.WithSSO(sso)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.Add(supervisor.NewHTTPServerService(httpServer, cfg.Server.Addr, cfg.Server.ShutdownTimeout))
	if cfg.Session.SweepInterval > 0 {
		tree.Add(supervisor.NewSessionSweeperService(authSvc, cfg.Session.SweepInterval))
	}

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("shutdown complete")
}

// sessionSecret returns the configured secret, or a random one that
// invalidates every cookie on restart.
func sessionSecret(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}
	logging.Warn().Msg("session.secret not set; using a random per-process secret")
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logging.Fatal().Err(err).Msg("generate session secret")
	}
	return b
}
