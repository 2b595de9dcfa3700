package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, statusCode, envelope{Success: false, Message: message})
}

func writeValidationError(w http.ResponseWriter, v *validator) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "validation failed",
		Errors:  v.fieldErrors(),
	})
}

// writeServerError logs the cause to the console and best-effort to the
// error_logs table, and sends the client a generic envelope. The console
// write happens first so a broken error_logs table can't mask the cause.
func (app *application) writeServerError(w http.ResponseWriter, err error, source string, userID *int) {
	log.Printf("[ERROR] %v (%s)", err, source)
	if logErr := app.storage.insertErrorLog("error", err.Error(), source, "", userID); logErr != nil {
		log.Printf("[ERROR] recording error log: %v", logErr)
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "server is running", map[string]any{
		"environment": app.config.env,
		"version":     version,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "endpoint not found")
}
