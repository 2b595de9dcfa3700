package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", app.healthCheckHandler)

	mux.HandleFunc("POST /api/users/register", app.registerUserHandler)
	mux.HandleFunc("POST /api/users/register-admin", app.registerAdminHandler)
	mux.HandleFunc("POST /api/users/login", app.loginUserHandler)
	mux.HandleFunc("POST /api/users/admin-login", app.adminLoginHandler)
	mux.HandleFunc("GET /api/users/profile", app.authenticateBearer(app.getProfileHandler))
	mux.HandleFunc("GET /api/users/profile-api-key", app.authenticateAPIKey(app.getProfileHandler))
	mux.HandleFunc("POST /api/users/reset-password", app.authenticateBearer(app.resetPasswordHandler))
	mux.HandleFunc("POST /api/users/self-reset-password", app.authenticateBearer(app.selfResetPasswordHandler))

	// The bearer and api-key trees expose one and the same handler set; only
	// identity resolution differs between the two mounts.
	app.mountResourceRoutes(mux, "/api", app.authenticateBearer)
	app.mountResourceRoutes(mux, "/api/key", app.authenticateAPIKey)

	mux.HandleFunc("/", notFoundHandler)

	var handler http.Handler = app.logRequests(app.enableCORS(mux))
	if app.config.limiter.enabled {
		handler = app.rateLimit(handler)
	}
	return handler
}

func (app *application) mountResourceRoutes(mux *http.ServeMux, prefix string, auth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET "+prefix+"/categories", auth(app.getCategoriesHandler))
	mux.HandleFunc("POST "+prefix+"/categories", auth(app.createCategoryHandler))
	mux.HandleFunc("PUT "+prefix+"/categories/{id}", auth(app.updateCategoryHandler))
	mux.HandleFunc("DELETE "+prefix+"/categories/{id}", auth(app.deleteCategoryHandler))

	mux.HandleFunc("GET "+prefix+"/tasks", auth(app.getTasksHandler))
	mux.HandleFunc("POST "+prefix+"/tasks", auth(app.createTaskHandler))
	mux.HandleFunc("GET "+prefix+"/tasks/{id}", auth(app.getTaskHandler))
	mux.HandleFunc("PUT "+prefix+"/tasks/{id}", auth(app.updateTaskHandler))
	mux.HandleFunc("PATCH "+prefix+"/tasks/{id}/status", auth(app.updateTaskStatusHandler))
	mux.HandleFunc("DELETE "+prefix+"/tasks/{id}", auth(app.deleteTaskHandler))
}
