package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type ctxKey string

const userIDKey ctxKey = "userID"

const userIDHeader = "X-User-ID"

// requireUser извлекает идентификатор пользователя из заголовка X-User-ID
// и кладёт его в контекст запроса. Запросы без заголовка отклоняются.
func requireUser(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(userIDHeader))
			if userID == "" {
				log.Warnf("%s: missing %s header", whereami.WhereAmI(), userIDHeader)
				WriteError(w, e.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromCtx(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", e.ErrUnauthorized
	}

	return userID, nil
}

func logRequests(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debugf("http request: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
