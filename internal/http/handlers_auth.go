package http

import (
	"net/http"

	"github.com/parliyanto/Cash-Tracker/internal/log"
)

type loginPage struct {
	Error string
}

// handleIndex serves the login page, or sends authenticated users straight
// to their dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.sessionUser(r) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", loginPage{Error: "Invalid request"})
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	token, user, err := s.auth.Login(r.Context(), email, password)
	if err != nil {
		// One message for every failure mode so the form never reveals
		// whether the email exists.
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected", log.FieldClientIP, extractClientIP(r))
		s.renderStatus(w, r, http.StatusUnauthorized, "login.html", loginPage{Error: "Invalid credentials"})
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Session opened", "user_id", user.ID)
	s.setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "Session closed", "user_id", userID(r.Context()))
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
