package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
)

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.errorLog.Output(2, fmt.Sprintf("%s\n%s", err, debug.Stack()))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
