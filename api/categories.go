package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// parseIDParam reads the {id} path value; anything that isn't a positive
// integer is a validation failure, not a lookup miss.
func parseIDParam(r *http.Request, v *validator, field string) int {
	id, err := strconv.Atoi(r.PathValue("id"))
	v.checkCond(err == nil && id > 0, field, "must be a positive integer")
	return id
}

func (app *application) getCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	categories, err := app.storage.getCategoriesForUser(ident.ID)
	if err != nil {
		app.writeServerError(w, err, "categories.getCategories", &ident.ID)
		return
	}
	writeSuccess(w, http.StatusOK, "categories retrieved", map[string]any{
		"categories": categories,
	})
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	var input struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.Name = strings.TrimSpace(input.Name)

	v := newValidator()
	v.checkCond(len(input.Name) >= 1 && len(input.Name) <= 100, "name", "must be between 1 and 100 characters")
	if input.Color == "" {
		input.Color = defaultCategoryColor
	} else {
		v.checkColor(input.Color)
	}
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	exists, err := app.storage.categoryNameExists(input.Name, ident.ID, 0)
	if err != nil {
		app.writeServerError(w, err, "categories.createCategory", &ident.ID)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "category name already exists")
		return
	}

	c := &category{
		Name:   input.Name,
		Color:  input.Color,
		UserID: ident.ID,
	}
	err = app.storage.insertCategory(c)
	if err != nil {
		// Two concurrent creates can both pass the pre-check; the (name,
		// user_id) constraint decides, and the loser gets the same message.
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "category name already exists")
			return
		}
		app.writeServerError(w, err, "categories.createCategory", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusCreated, "category created", map[string]any{
		"category": c,
	})
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")

	var input struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name != nil {
		*input.Name = strings.TrimSpace(*input.Name)
		v.checkCond(len(*input.Name) >= 1 && len(*input.Name) <= 100, "name", "must be between 1 and 100 characters")
	}
	if input.Color != nil {
		v.checkColor(*input.Color)
	}
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getCategoryByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "categories.updateCategory", &ident.ID)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if input.Name != nil && *input.Name != existing.Name {
		exists, err := app.storage.categoryNameExists(*input.Name, ident.ID, id)
		if err != nil {
			app.writeServerError(w, err, "categories.updateCategory", &ident.ID)
			return
		}
		if exists {
			writeError(w, http.StatusBadRequest, "category name already exists")
			return
		}
		existing.Name = *input.Name
	}
	if input.Color != nil {
		existing.Color = *input.Color
	}

	err = app.storage.updateCategory(existing)
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "category name already exists")
			return
		}
		app.writeServerError(w, err, "categories.updateCategory", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "category updated", map[string]any{
		"category": existing,
	})
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getCategoryByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "categories.deleteCategory", &ident.ID)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	err = app.storage.deleteCategory(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "categories.deleteCategory", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "category deleted; its tasks are now uncategorized", nil)
}
