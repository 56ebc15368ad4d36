// Package middleware carries the participant identity through requests.
// There is no authentication here: each participant arrives with a stable
// opaque id its client generated, and the server threads it through.
package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userNameKey contextKey = "user_name"
)

// Header names clients use to identify the acting participant
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// Identity extracts the participant identity headers into the request
// context. Requests without an id are rejected before reaching a handler.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			respondError(w, HeaderUserID+" header required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		if name := r.Header.Get(HeaderUserName); name != "" {
			ctx = context.WithValue(ctx, userNameKey, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the participant id from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserName extracts the participant display name from context
func GetUserName(ctx context.Context) string {
	name, ok := ctx.Value(userNameKey).(string)
	if !ok {
		return ""
	}
	return name
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
