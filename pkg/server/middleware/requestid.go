package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"surevoucher/webcore/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength caps client-supplied IDs.
	maxRequestIDLength = 128
)

// RequestID assigns every request an ID and stores it in the request context
// (see logging.GetRequestID) and the X-Request-ID response header. A
// client-supplied X-Request-ID is kept when it is printable and at most 128
// bytes; otherwise a UUID v4 is generated.
//
// Example usage:
//
//	handler = middleware.RequestID(handler)
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
