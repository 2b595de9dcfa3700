package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func newAPIKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	app.createAccount(w, input.Username, input.Email, input.Password, roleUser)
}

func (app *application) registerAdminHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		AdminCode string `json:"admin_code"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v := newValidator()
	v.checkCond(input.AdminCode != "", "admin_code", "must be provided")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}
	if input.AdminCode != app.config.adminSecret {
		writeError(w, http.StatusForbidden, "invalid admin code")
		return
	}
	app.createAccount(w, input.Username, input.Email, input.Password, roleAdmin)
}

func (app *application) createAccount(w http.ResponseWriter, username, email, password, role string) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	v := newValidator()
	v.checkUsername(username)
	v.checkEmail(email)
	v.checkPassword(password, "password")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getUserByUsernameOrEmail(username, email)
	if err != nil {
		app.writeServerError(w, err, "users.createAccount", nil)
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "email or username is already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		app.writeServerError(w, err, "users.createAccount", nil)
		return
	}

	apiKey := newAPIKey()
	u := &user{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		APIKey:       &apiKey,
		Role:         role,
	}
	err = app.storage.insertUser(u)
	if err != nil {
		// A concurrent registration can slip past the existence check; the
		// unique constraint is authoritative and maps to the same response.
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "email or username is already in use")
			return
		}
		app.writeServerError(w, err, "users.createAccount", nil)
		return
	}

	token, err := issueToken(app.config.jwt.secret, app.config.jwt.expiry, identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	})
	if err != nil {
		app.writeServerError(w, err, "users.createAccount", &u.ID)
		return
	}

	writeSuccess(w, http.StatusCreated, "registration successful", map[string]any{
		"user":  u,
		"token": token,
	})
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	app.login(w, r, false)
}

func (app *application) adminLoginHandler(w http.ResponseWriter, r *http.Request) {
	app.login(w, r, true)
}

// login returns one generic message for unknown email and wrong password
// alike so the response never reveals whether an account exists.
func (app *application) login(w http.ResponseWriter, r *http.Request, adminOnly bool) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	v := newValidator()
	v.checkEmail(input.Email)
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	u, err := app.storage.getUserByEmail(input.Email)
	if err != nil {
		app.writeServerError(w, err, "users.login", nil)
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if adminOnly && u.Role != roleAdmin {
		writeError(w, http.StatusForbidden, "account is not an admin")
		return
	}

	token, err := issueToken(app.config.jwt.secret, app.config.jwt.expiry, identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	})
	if err != nil {
		app.writeServerError(w, err, "users.login", &u.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "login successful", map[string]any{
		"user":  u,
		"token": token,
	})
}

func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	u, err := app.storage.getUserByID(ident.ID)
	if err != nil {
		app.writeServerError(w, err, "users.getProfile", &ident.ID)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeSuccess(w, http.StatusOK, "profile retrieved", map[string]any{
		"user": u,
	})
}

func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	var input struct {
		UserID      int    `json:"user_id"`
		NewPassword string `json:"new_password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v := newValidator()
	v.checkCond(input.UserID > 0, "user_id", "must be a positive integer")
	v.checkPassword(input.NewPassword, "new_password")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	// The admin role is re-checked against the database so a demoted admin
	// can't keep using a still-valid token for resets.
	requester, err := app.storage.getUserByID(ident.ID)
	if err != nil {
		app.writeServerError(w, err, "users.resetPassword", &ident.ID)
		return
	}
	if requester == nil || requester.Role != roleAdmin {
		writeError(w, http.StatusForbidden, "only admins can reset passwords")
		return
	}

	target, err := app.storage.getUserByID(input.UserID)
	if err != nil {
		app.writeServerError(w, err, "users.resetPassword", &ident.ID)
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		app.writeServerError(w, err, "users.resetPassword", &ident.ID)
		return
	}
	err = app.storage.updateUserPassword(target.ID, hash)
	if err != nil {
		app.writeServerError(w, err, "users.resetPassword", &ident.ID)
		return
	}

	app.notifyPasswordReset(target)

	writeSuccess(w, http.StatusOK, "password reset", map[string]any{
		"user_id":  target.ID,
		"username": target.Username,
	})
}

func (app *application) selfResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v := newValidator()
	v.checkCond(input.CurrentPassword != "", "current_password", "must be provided")
	v.checkPassword(input.NewPassword, "new_password")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	u, err := app.storage.getUserByID(ident.ID)
	if err != nil {
		app.writeServerError(w, err, "users.selfResetPassword", &ident.ID)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.CurrentPassword)) != nil {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		app.writeServerError(w, err, "users.selfResetPassword", &ident.ID)
		return
	}
	err = app.storage.updateUserPassword(u.ID, hash)
	if err != nil {
		app.writeServerError(w, err, "users.selfResetPassword", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "password changed", nil)
}
