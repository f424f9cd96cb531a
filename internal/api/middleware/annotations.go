package middleware

import (
	"context"
	"net/http"
	"sync"
)

const annotationsKey contextKey = "annotations"

// Annotations carries facts a handler learns (the extraction outcome, say) back out
// to the middlewares that report on the request.
type Annotations struct {
	mu     sync.Mutex
	values map[string]string
}

func (a *Annotations) set(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.values == nil {
		a.values = make(map[string]string)
	}
	a.values[key] = value
}

// Values returns a copy of the recorded annotations.
func (a *Annotations) Values() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Annotate records key=value for the current request. It is a no-op outside a
// request served through Sentry or AccessLog.
func Annotate(ctx context.Context, key, value string) {
	if a, ok := ctx.Value(annotationsKey).(*Annotations); ok {
		a.set(key, value)
	}
}

// withAnnotations reuses the request's annotations or attaches new ones.
func withAnnotations(r *http.Request) (*http.Request, *Annotations) {
	if a, ok := r.Context().Value(annotationsKey).(*Annotations); ok {
		return r, a
	}
	a := &Annotations{}
	return r.WithContext(context.WithValue(r.Context(), annotationsKey, a)), a
}
