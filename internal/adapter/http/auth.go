package http

import (
	"net/http"
	"time"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/state"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type twoFactorLoginRequest struct {
	TempToken    string `json:"tempToken"`
	Code         string `json:"code"`
	RecoveryCode string `json:"recoveryCode"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// sessionView is returned whenever a session becomes active.
type sessionView struct {
	Session     domain.Session    `json:"session"`
	Categories  []domain.Category `json:"categories"`
	PeakCount   int               `json:"peakCount"`
	RefreshedAt string            `json:"refreshedAt,omitempty"`
}

func newSessionView(st state.SessionState) sessionView {
	v := sessionView{
		Session:    st.Session,
		Categories: st.Categories,
		PeakCount:  len(st.Peaks),
	}
	if v.Categories == nil {
		v.Categories = []domain.Category{}
	}
	if !st.RefreshedAt.IsZero() {
		v.RefreshedAt = st.RefreshedAt.UTC().Format(time.RFC3339)
	}
	return v
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if !decodeJSON(w, r, &user) {
		return
	}
	if err := s.catalog.Signup(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.catalog.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Challenge != nil {
		writeJSON(w, http.StatusAccepted, res.Challenge)
		return
	}
	s.writeSession(w, r, res.Session.Token)
}

func (s *Server) handleLoginTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req twoFactorLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	recovery := req.RecoveryCode != ""
	code := req.Code
	if recovery {
		code = req.RecoveryCode
	}
	if req.TempToken == "" || code == "" {
		writeMessage(w, http.StatusBadRequest, "tempToken and code are required")
		return
	}

	session, err := s.catalog.CompleteTwoFactor(r.Context(), req.TempToken, code, recovery)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, r, session.Token)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var session domain.Session
	if !decodeJSON(w, r, &session) {
		return
	}
	st, err := s.catalog.Restore(r.Context(), session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	s.catalog.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	setup, err := s.catalog.SetupTwoFactor(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

func (s *Server) handleTwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	act, err := s.catalog.VerifyTwoFactorSetup(r.Context(), token, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	st, err := s.catalog.Refresh(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// writeSession responds with the freshly installed state for token. The
// initial load may have failed, in which case only the session is known.
func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, token string) {
	st, err := s.catalog.State(token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}
