package http

import (
	"context"
	"net/http"

	"github.com/parliyanto/Cash-Tracker/internal/log"
)

// sessionCookie carries the signed session token. HttpOnly keeps it away
// from page scripts; SameSite=Lax blocks cross-site POSTs.
const sessionCookie = "ct_session"

type contextKey string

const userIDKey contextKey = "user_id"

// userID returns the authenticated user id placed in the context by withUser.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// withUser requires a valid session and puts the user id in the request
// context. Unauthenticated requests go back to the login page.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			s.redirectToLogin(w, r)
			return
		}
		id, err := s.auth.Verify(cookie.Value)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rejected session token", "error", err)
			s.clearSessionCookie(w)
			s.redirectToLogin(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		next(w, r.WithContext(ctx))
	}
}

// sessionUser resolves the session cookie without enforcing it, for routes
// that behave differently when already logged in.
func (s *Server) sessionUser(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	id, err := s.auth.Verify(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectToLogin sends browsers to the login page. htmx requests get an
// HX-Redirect so the full page navigates instead of swapping a fragment.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
