package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/cloo-solutions/coach/internal/api"
)

// Recover turns a handler panic into the generic 500 reply.
func Recover(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.WithFields(logrus.Fields{
					"panic":      rec,
					"request_id": GetRequestID(r.Context()),
					"stack":      string(debug.Stack()),
				}).Error("handler panicked")

				if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
					hub.RecoverWithContext(r.Context(), rec)
				}

				api.Error(w, http.StatusInternalServerError, api.TechnicalDifficultiesMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
