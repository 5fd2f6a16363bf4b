package adapthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedback/internal/app"
)

// Options configures the HTTP adapter.
type Options struct {
	WebDir string

	CookieName   string
	CookieSecure bool
	// SessionSecret signs session cookies.
	SessionSecret []byte

	CORSOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	Metrics bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth       *app.AuthService
	feedback   *app.FeedbackService
	cookies    *cookieCodec
	oidcConfig oidcConfig
	opts       Options
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, feedback *app.FeedbackService, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "feedback_session"
	}
	return &Server{
		auth:     auth,
		feedback: feedback,
		cookies: &cookieCodec{
			name:   opts.CookieName,
			secure: opts.CookieSecure,
			secret: opts.SessionSecret,
		},
		opts: opts,
	}
}

// WithSSO enables OpenID Connect login through sso.
func (s *Server) WithSSO(sso *SSO) *Server {
	if sso != nil {
		s.oidcConfig = oidcConfig{Enabled: true, OAuth2Config: sso.OAuth2Config, Provider: sso.Provider}
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDToLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.sessionMiddleware)

	r.Route("/api", func(api chi.Router) {
		api.Use(withNoCache)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		api.Group(func(g chi.Router) {
			if s.opts.RateLimitEnabled {
				g.Use(httprate.Limit(s.opts.RateLimitRequests, s.opts.RateLimitWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeError(w, http.StatusTooManyRequests, "Too many requests")
					}),
				))
			}
			g.Post("/signup", s.handleSignup)
			g.Post("/login", s.handleLogin)
		})
		api.Post("/logout", s.handleLogout)

		api.With(s.requireSession).Post("/feedback", s.handleSubmitFeedback)
		api.Get("/feedbacks", s.handleListFeedbacks)

		api.Get("/auth/status", s.handleAuthStatus)
		api.Get("/auth/config", s.handleConfig)
		api.Get("/auth/sso/login", s.handleSSOLogin)
		api.Get("/auth/sso/callback", s.handleSSOCallback)
	})

	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	static := http.FileServer(http.Dir(s.opts.WebDir))
	r.Get("/", s.handleLanding)
	r.With(s.requireSessionPage).Get("/dashboard.html", static.ServeHTTP)
	r.Handle("/*", static)

	return r
}
