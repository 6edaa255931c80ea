package webapp

import (
	"context"
	"net/http"
	"time"

	"github.com/adrianhv34-code/inventario-app/internal/db"
)

const (
	sessionCookieName = "inv_session"
	sessionTTL        = 12 * time.Hour
)

type ctxKey string

const ctxSession ctxKey = "session"

// sessionFrom returns the session placed in the request context by the
// role middlewares.
func sessionFrom(ctx context.Context) *db.Session {
	s, _ := ctx.Value(ctxSession).(*db.Session)
	return s
}

func isAdmin(s *db.Session) bool { return s != nil && s.Role == db.RoleAdmin }
func isGuest(s *db.Session) bool { return s != nil && s.Role == db.RoleGuest }

// lookupSession resolves the cookie token against the sessions table.
// Expired sessions are treated as absent and their cookie is cleared.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*db.Session, bool, error) {
	tok, ok := readSessionCookie(r)
	if !ok {
		return nil, false, nil
	}
	sess, ok, err := s.DB.GetSession(r.Context(), tok)
	if err != nil {
		return nil, false, err
	}
	if !ok || sess.ExpiresAt <= time.Now().Unix() {
		clearSessionCookie(w)
		return nil, false, nil
	}
	return sess, true, nil
}

// clearSession deletes the server-side session (if any) and its cookie.
func (s *Server) clearSession(w http.ResponseWriter, r *http.Request) {
	if tok, ok := readSessionCookie(r); ok {
		_ = s.DB.DeleteSession(r.Context(), tok)
	}
	clearSessionCookie(w)
}

// withSession requires any logged-in role; anonymous requests are
// redirected to the login screen.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := s.lookupSession(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxSession, sess)))
	}
}

// withAdmin requires the Admin role. Guests land back on the
// inventory-entry screen with an access-denied notice; anonymous
// requests go to login.
func (s *Server) withAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := s.lookupSession(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if !isAdmin(sess) {
			setFlash(w, flashDanger, "Acceso denegado.")
			http.Redirect(w, r, "/ingresar", http.StatusFound)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxSession, sess)))
	}
}

// withGuest requires the Guest role. The machine screens are guest-only;
// an Admin is sent back to the index.
func (s *Server) withGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok, err := s.lookupSession(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if !isGuest(sess) {
			setFlash(w, flashDanger, "Acceso denegado.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxSession, sess)))
	}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func readSessionCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
