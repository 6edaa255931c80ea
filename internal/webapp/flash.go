package webapp

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "inv_flash"

const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

// flashMessage is a one-shot notice rendered on the next screen.
type flashMessage struct {
	Kind    string
	Message string
}

// setFlash stores a notice in a short-lived cookie. The value is
// base64-wrapped so messages with punctuation survive cookie encoding.
func setFlash(w http.ResponseWriter, kind, message string) {
	v := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    v,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns the pending notice, if any, and clears its cookie so
// it renders exactly once.
func popFlash(w http.ResponseWriter, r *http.Request) *flashMessage {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil
	}
	return &flashMessage{Kind: kind, Message: msg}
}
