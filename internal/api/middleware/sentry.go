package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
)

// Sentry opens a transaction per request, named after the matched chi route and
// tagged with the model, the request ID and any handler annotations such as the
// extraction outcome. It is a no-op when Sentry is not initialized.
func Sentry(model string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}

			options := []sentry.SpanOption{
				sentry.WithOpName("http.server"),
				sentry.WithTransactionSource(sentry.SourceURL),
			}
			if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
				options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
			}

			transaction := sentry.StartTransaction(r.Context(),
				fmt.Sprintf("%s %s", r.Method, r.URL.Path), options...)
			defer transaction.Finish()

			r = r.WithContext(sentry.SetHubOnContext(transaction.Context(), hub))
			r, annotations := withAnnotations(r)
			hub.Scope().SetRequest(r)

			tags := map[string]string{"model": model}
			if requestID := GetRequestID(r.Context()); requestID != "" {
				tags["request_id"] = requestID
			}
			applyTags(hub, transaction, tags)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					transaction.Name = fmt.Sprintf("%s %s", r.Method, pattern)
					transaction.Source = sentry.SourceRoute
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			transaction.Status = sentry.HTTPtoSpanStatus(status)
			transaction.SetData("http.response.status_code", status)
			applyTags(hub, transaction, annotations.Values())

			// Pipeline failures are captured by their own spans; this covers the rest.
			if status >= http.StatusInternalServerError {
				hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
			}
		})
	}
}

func applyTags(hub *sentry.Hub, transaction *sentry.Span, tags map[string]string) {
	for k, v := range tags {
		if v == "" {
			continue
		}
		hub.Scope().SetTag(k, v)
		transaction.SetTag(k, v)
	}
}
