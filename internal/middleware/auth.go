package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/azrilhafizi/kirim-backend/internal/api/httpx"
	"github.com/azrilhafizi/kirim-backend/internal/auth"
)

type ctxKey string

const ctxAccountKey ctxKey = "acct"

// AccountNumber returns the session's account number, set by Auth.
func AccountNumber(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxAccountKey).(string)
	return v, ok
}

type AuthMiddleware struct {
	tm     *auth.TokenManager
	appEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{tm: tm, appEnv: appEnv}
}

// Auth requires a bearer access token. In dev a "dev-<account>" token is
// accepted as a shortcut.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		if m.appEnv == "dev" && strings.HasPrefix(token, "dev-") {
			ctx := context.WithValue(r.Context(), ctxAccountKey, strings.TrimPrefix(token, "dev-"))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, isRefresh, err := m.tm.ParseAny(token)
		if err != nil || isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxAccountKey, claims.AccountNumber)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
