package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"feedback/internal/app"
	"feedback/internal/domain"
	"feedback/internal/logging"
	"feedback/internal/metrics"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionState is what sessionMiddleware learned about the caller.
type sessionState struct {
	session *domain.Session
	// err is set only for store failures, not for missing or expired sessions.
	err error
}

func sessionFromContext(ctx context.Context) sessionState {
	st, _ := ctx.Value(sessionContextKey).(sessionState)
	return st
}

// sessionMiddleware resolves the session cookie, if any, and records the
// result in the request context. It never rejects a request.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var st sessionState
		if token := s.cookies.token(r); token != "" {
			session, err := s.auth.ResolveSession(r.Context(), token)
			switch {
			case err == nil:
				st.session = session
			case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrSessionExpired):
			default:
				st.err = err
			}
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSession rejects API requests without a live session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := sessionFromContext(r.Context())
		if st.err != nil {
			logging.Ctx(r.Context()).Error().Err(st.err).Msg("session lookup failed")
			writeError(w, http.StatusInternalServerError, msgServerError)
			return
		}
		if st.session == nil {
			writeError(w, http.StatusUnauthorized, msgAuthRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSessionPage sends anonymous browsers to the login page.
func (s *Server) requireSessionPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()).session == nil {
			http.Redirect(w, r, "/login.html", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDToLogger copies chi's request id into the logging context.
func requestIDToLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.ContextWithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
