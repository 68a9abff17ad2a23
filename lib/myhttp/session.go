package myhttp

import (
	"context"
	"net/http"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myuuid"
)

const (
	SessionCookieName = "storefront_session"
	sessionMaxAge     = 30 * 24 * 60 * 60
)

// ContextWithSession returns the request context carrying the session uid of the
// visitor. A new session cookie is issued when the request does not carry one.
func ContextWithSession(w http.ResponseWriter, r *http.Request, uuider myuuid.UUIDer) context.Context {
	c := mycontext.ContextFromHTTPRequest(r)

	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return mycontext.WithSessionUID(c, cookie.Value)
	}

	sessionUID := uuider.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionUID,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return mycontext.WithSessionUID(c, sessionUID)
}

// SessionMiddleware makes the session uid available in the context of every request.
func SessionMiddleware(uuider myuuid.UUIDer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := ContextWithSession(w, r, uuider)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
