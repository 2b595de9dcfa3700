package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dueDateLayout = "2006-01-02"

// parseTaskFilters validates the listing query parameters. sort_by and
// sort_order are deliberately not validated here: the builder's allow-list
// falls back silently instead of surfacing an error.
func parseTaskFilters(r *http.Request, v *validator) taskFilters {
	q := r.URL.Query()
	f := taskFilters{
		Page:      1,
		Limit:     10,
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if s := q.Get("category_id"); s != "" {
		id, err := strconv.Atoi(s)
		v.checkCond(err == nil && id > 0, "category_id", "must be a positive integer")
		f.CategoryID = id
	}
	if s := q.Get("status"); s != "" {
		v.checkOneOf(s, "status", taskStatuses)
		f.Status = s
	}
	if s := q.Get("priority"); s != "" {
		v.checkOneOf(s, "priority", taskPriorities)
		f.Priority = s
	}
	if s := q.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		v.checkCond(err == nil && page >= 1, "page", "must be a positive integer")
		f.Page = page
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		v.checkCond(err == nil && limit >= 1 && limit <= 100, "limit", "must be between 1 and 100")
		f.Limit = limit
	}
	v.checkCond(len(f.Search) <= 100, "search", "must be at most 100 characters")

	return f
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	f := parseTaskFilters(r, v)
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	tasks, err := app.storage.getTasks(ident.ID, f)
	if err != nil {
		app.writeServerError(w, err, "tasks.getTasks", &ident.ID)
		return
	}
	total, err := app.storage.countTasks(ident.ID, f)
	if err != nil {
		app.writeServerError(w, err, "tasks.getTasks", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "tasks retrieved", map[string]any{
		"tasks": tasks,
		"pagination": pagination{
			Total:       total,
			TotalPages:  totalPages(total, f.Limit),
			CurrentPage: f.Page,
			Limit:       f.Limit,
		},
	})
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	t, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "tasks.getTask", &ident.ID)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeSuccess(w, http.StatusOK, "task retrieved", map[string]any{
		"task": t,
	})
}

// checkCategoryOwnership rejects a category reference that is missing or
// owned by someone else with the same not-found response; it never reveals
// which of the two it was.
func (app *application) checkCategoryOwnership(w http.ResponseWriter, categoryID, userID int, source string) bool {
	c, err := app.storage.getCategoryByID(categoryID, userID)
	if err != nil {
		app.writeServerError(w, err, source, &userID)
		return false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return false
	}
	return true
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	var input struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
		Priority    string  `json:"priority"`
		DueDate     string  `json:"due_date"`
		CategoryID  int     `json:"category_id"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Status == "" {
		input.Status = "pending"
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}

	v := newValidator()
	v.checkCond(len(input.Title) >= 1 && len(input.Title) <= 255, "title", "must be between 1 and 255 characters")
	if input.Description != nil {
		v.checkCond(len(*input.Description) <= 1000, "description", "must be at most 1000 characters")
	}
	v.checkOneOf(input.Status, "status", taskStatuses)
	v.checkOneOf(input.Priority, "priority", taskPriorities)
	var dueDate *time.Time
	if input.DueDate != "" {
		d, err := time.Parse(dueDateLayout, input.DueDate)
		v.checkCond(err == nil, "due_date", "must be a date in YYYY-MM-DD format")
		dueDate = &d
	}
	v.checkCond(input.CategoryID >= 0, "category_id", "must be a positive integer")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	var categoryID *int
	if input.CategoryID > 0 {
		if !app.checkCategoryOwnership(w, input.CategoryID, ident.ID, "tasks.createTask") {
			return
		}
		categoryID = &input.CategoryID
	}

	t := &task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     dueDate,
		CategoryID:  categoryID,
		UserID:      ident.ID,
	}
	err = app.storage.insertTask(t)
	if err != nil {
		app.writeServerError(w, err, "tasks.createTask", &ident.ID)
		return
	}

	// Re-read through the join so the response carries the category name.
	created, err := app.storage.getTaskByID(t.ID, ident.ID)
	if err != nil || created == nil {
		app.writeServerError(w, err, "tasks.createTask", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusCreated, "task created", map[string]any{
		"task": created,
	})
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		DueDate     *string `json:"due_date"`
		CategoryID  *int    `json:"category_id"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.Title != nil {
		*input.Title = strings.TrimSpace(*input.Title)
		v.checkCond(len(*input.Title) >= 1 && len(*input.Title) <= 255, "title", "must be between 1 and 255 characters")
	}
	if input.Description != nil {
		v.checkCond(len(*input.Description) <= 1000, "description", "must be at most 1000 characters")
	}
	if input.Status != nil {
		v.checkOneOf(*input.Status, "status", taskStatuses)
	}
	if input.Priority != nil {
		v.checkOneOf(*input.Priority, "priority", taskPriorities)
	}
	var dueDate *time.Time
	if input.DueDate != nil && *input.DueDate != "" {
		d, err := time.Parse(dueDateLayout, *input.DueDate)
		v.checkCond(err == nil, "due_date", "must be a date in YYYY-MM-DD format")
		dueDate = &d
	}
	if input.CategoryID != nil {
		v.checkCond(*input.CategoryID >= 0, "category_id", "must be a positive integer")
	}
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "tasks.updateTask", &ident.ID)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = input.Description
	}
	if input.Status != nil {
		existing.Status = *input.Status
	}
	if input.Priority != nil {
		existing.Priority = *input.Priority
	}
	if input.DueDate != nil {
		// An explicit empty string clears the due date.
		existing.DueDate = dueDate
	}
	if input.CategoryID != nil {
		if *input.CategoryID == 0 {
			existing.CategoryID = nil
		} else {
			if !app.checkCategoryOwnership(w, *input.CategoryID, ident.ID, "tasks.updateTask") {
				return
			}
			existing.CategoryID = input.CategoryID
		}
	}

	err = app.storage.updateTask(existing)
	if err != nil {
		app.writeServerError(w, err, "tasks.updateTask", &ident.ID)
		return
	}

	updated, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil || updated == nil {
		app.writeServerError(w, err, "tasks.updateTask", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "task updated", map[string]any{
		"task": updated,
	})
}

func (app *application) updateTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")

	var input struct {
		Status string `json:"status"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v.checkOneOf(input.Status, "status", taskStatuses)
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "tasks.updateTaskStatus", &ident.ID)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	err = app.storage.updateTaskStatus(id, ident.ID, input.Status)
	if err != nil {
		app.writeServerError(w, err, "tasks.updateTaskStatus", &ident.ID)
		return
	}

	updated, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil || updated == nil {
		app.writeServerError(w, err, "tasks.updateTaskStatus", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "task status updated", map[string]any{
		"task": updated,
	})
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	ident := identityFromRequest(r)
	v := newValidator()
	id := parseIDParam(r, v, "id")
	if v.hasErrors() {
		writeValidationError(w, v)
		return
	}

	existing, err := app.storage.getTaskByID(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "tasks.deleteTask", &ident.ID)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	err = app.storage.deleteTask(id, ident.ID)
	if err != nil {
		app.writeServerError(w, err, "tasks.deleteTask", &ident.ID)
		return
	}

	writeSuccess(w, http.StatusOK, "task deleted", map[string]any{
		"task_id": id,
	})
}
