package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-session/internal/session"
	"github.com/angelmondragon/storefront-session/pkg/config"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

// Session resolves the visitor from the session cookie, issuing a new one
// when the cookie is missing or no longer known. The cookie is rewritten on
// every request so its MaxAge slides with the registry's idle TTL.
func Session(registry *session.Registry, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current string
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				current = cookie.Value
			}

			visitor, created := registry.Resolve(current)
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    visitor.ID,
				Path:     "/",
				MaxAge:   int(cfg.IdleTTL / time.Second),
				HttpOnly: true,
				Secure:   cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithVisitor(r.Context(), visitor)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, visitor.ID)
				if created {
					logg.Debug(ctx, "session.issued")
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
