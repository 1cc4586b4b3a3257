package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"repairflow/internal/commons"
)

const (
	TraceHeader       = "X-Trace-Id"
	SessionCookieName = "repairflow_session"
)

// Trace reuses an incoming X-Trace-Id or generates one, and echoes it back.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(commons.WithTraceID(r.Context(), traceID)))
	})
}

// Session attaches the wizard session id, issuing a new id when the request
// carries none or a malformed one. The cookie is rewritten on every request
// with a max-age of ttl, matching the sliding expiry of the stored cart.
func Session(ttl time.Duration) func(http.Handler) http.Handler {
	maxAge := int(ttl / time.Second)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.New().String()
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(commons.WithSessionID(r.Context(), sessionID)))
		})
	}
}

func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("traceId", commons.TraceID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
