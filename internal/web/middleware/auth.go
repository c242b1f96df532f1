package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/JonMunkholm/procspec/internal/config"
	"github.com/JonMunkholm/procspec/internal/logging"
)

var (
	errMissingAPIKey = errors.New("missing API key")
	errInvalidAPIKey = errors.New("invalid API key")
)

// APIKeyAuth checks the X-API-Key header when cfg.RequireAPIKey is set.
// A missing key is 401, an unknown key 403.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			var err error
			status := http.StatusOK
			switch {
			case key == "":
				err, status = errMissingAPIKey, http.StatusUnauthorized
			case !isValidAPIKey(key, cfg.APIKeys):
				err, status = errInvalidAPIKey, http.StatusForbidden
			}
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"reason", err.Error(),
				)
				WriteError(w, r, status, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, k := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
