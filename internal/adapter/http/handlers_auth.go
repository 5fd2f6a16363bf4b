// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"errors"
	"net/http"
	"path/filepath"

	"feedback/internal/app"
	"feedback/internal/domain"
	"feedback/internal/logging"
)

const (
	msgServerError     = "Server error"
	msgInvalidRequest  = "Invalid request"
	msgAuthRequired    = "Authentication required"
	msgUserExists      = "User already exists"
	msgInvalidCreds    = "Invalid credentials"
	msgRequiredSignup  = "Username, email and password are required"
	msgSignupOK        = "User created successfully"
	msgLoginOK         = "Login successful"
	msgFeedbackCreated = "Feedback submitted successfully"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := parseBody(r, &req, func(get func(string) string) {
		req.Username, req.Email, req.Password = get("username"), get("email"), get("password")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	session, err := s.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, app.ErrMissingFields):
		writeError(w, http.StatusBadRequest, msgRequiredSignup)
		return
	case errors.Is(err, domain.ErrDuplicateUser):
		writeError(w, http.StatusBadRequest, msgUserExists)
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if !s.startSession(w, r, session) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msgSignupOK})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := parseBody(r, &req, func(get func(string) string) {
		req.Email, req.Password = get("email"), get("password")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeError(w, http.StatusBadRequest, msgInvalidCreds)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if !s.startSession(w, r, session) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msgLoginOK})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := s.cookies.token(r); token != "" {
		if err := s.auth.Logout(r.Context(), token); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("session delete failed")
		}
	}
	s.cookies.clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	if st.err != nil {
		logging.Ctx(r.Context()).Warn().Err(st.err).Msg("session lookup failed; reporting anonymous")
	}
	if st.session == nil {
		writeJSON(w, http.StatusOK, authStatus{})
		return
	}
	writeJSON(w, http.StatusOK, authStatus{Authenticated: true, Username: st.session.Username})
}

// handleLanding sends signed-in users to the dashboard.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()).session != nil {
		http.Redirect(w, r, "/dashboard.html", http.StatusFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.opts.WebDir, "index.html"))
}

// startSession writes the session cookie. On failure it has already
// written a 500 and returns false.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, session *domain.Session) bool {
	if err := s.cookies.set(w, session, s.auth.SessionTTL()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("sign session cookie")
		writeError(w, http.StatusInternalServerError, msgServerError)
		return false
	}
	return true
}
