package handlers

import "net/http"

type contextKey string

// UserIDContextKey is where the auth middleware stores the verified user id.
const UserIDContextKey = contextKey("user_id")

func userIDFromContext(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(UserIDContextKey).(string)
	return id, ok && id != ""
}
