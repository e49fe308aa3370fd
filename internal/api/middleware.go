package api

import (
	"net/http"
	"strings"
)

// ObserverHeader names the device or volunteer submitting a request.
// It labels finish records and logs; it is not an authentication mechanism.
const ObserverHeader = "X-Observer"

const maxObserverLength = 64

// ObserverMiddleware stores the observer label of the request in its context
func ObserverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observer := strings.TrimSpace(r.Header.Get(ObserverHeader))
		if observer == "" {
			next.ServeHTTP(w, r)
			return
		}

		if len(observer) > maxObserverLength {
			observer = observer[:maxObserverLength]
		}

		next.ServeHTTP(w, r.WithContext(ContextWithObserver(r.Context(), observer)))
	})
}
