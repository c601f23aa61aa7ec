package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tripwiseBack/internal/handlers"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.infoLog.Printf("%s - %s %s %s", r.RemoteAddr, r.Proto, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// bearerUserID extracts and verifies the access token, returning the user id
// it carries.
func (app *application) bearerUserID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header missing or invalid")
	}
	return app.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
}

// requireAuth rejects requests without a valid bearer token and stores the
// verified user id in the request context for handlers.
func (app *application) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := app.bearerUserID(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authorization header missing or invalid")
			return
		}
		ctx := context.WithValue(r.Context(), handlers.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches the user identity when a valid token is present and
// passes the request through anonymously otherwise.
func (app *application) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := app.bearerUserID(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), handlers.UserIDContextKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}
