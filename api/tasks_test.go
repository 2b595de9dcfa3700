package main

import (
	"net/http/httptest"
	"testing"
)

func TestParseTaskFiltersDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks", nil)
	v := newValidator()
	f := parseTaskFilters(r, v)

	if v.hasErrors() {
		t.Fatalf("unexpected errors: %v", v.fieldErrors())
	}
	if f.Page != 1 || f.Limit != 10 {
		t.Errorf("got page=%d limit=%d, want page=1 limit=10", f.Page, f.Limit)
	}
	if f.CategoryID != 0 || f.Status != "" || f.Priority != "" || f.Search != "" {
		t.Errorf("expected absent filters, got %+v", f)
	}
}

func TestParseTaskFiltersValid(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks?category_id=4&status=in_progress&priority=low&page=3&limit=50&search=milk&sort_by=title&sort_order=asc", nil)
	v := newValidator()
	f := parseTaskFilters(r, v)

	if v.hasErrors() {
		t.Fatalf("unexpected errors: %v", v.fieldErrors())
	}
	want := taskFilters{
		CategoryID: 4,
		Status:     "in_progress",
		Priority:   "low",
		Search:     "milk",
		SortBy:     "title",
		SortOrder:  "asc",
		Page:       3,
		Limit:      50,
	}
	if f != want {
		t.Errorf("got %+v, want %+v", f, want)
	}
}

func TestParseTaskFiltersRejections(t *testing.T) {
	longSearch := make([]byte, 101)
	for i := range longSearch {
		longSearch[i] = 'a'
	}

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown status", "status=done", "status"},
		{"unknown priority", "priority=urgent", "priority"},
		{"zero category", "category_id=0", "category_id"},
		{"negative category", "category_id=-3", "category_id"},
		{"non-numeric category", "category_id=abc", "category_id"},
		{"zero page", "page=0", "page"},
		{"zero limit", "limit=0", "limit"},
		{"limit above cap", "limit=101", "limit"},
		{"long search", "search=" + string(longSearch), "search"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/tasks?"+tc.query, nil)
			v := newValidator()
			parseTaskFilters(r, v)
			if !v.hasErrors() {
				t.Fatal("expected a validation error")
			}
			if got := v.fieldErrors()[0].Field; got != tc.field {
				t.Errorf("got error on field %q, want %q", got, tc.field)
			}
		})
	}
}

func TestParseTaskFiltersLeavesSortUnvalidated(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks?sort_by=bogus&sort_order=sideways", nil)
	v := newValidator()
	f := parseTaskFilters(r, v)

	if v.hasErrors() {
		t.Fatalf("sort params must not fail validation, got %v", v.fieldErrors())
	}
	if f.sortColumn() != "created_at" || f.sortDirection() != "DESC" {
		t.Errorf("got fallback %s %s, want created_at DESC", f.sortColumn(), f.sortDirection())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 100, 1},
	}
	for _, tc := range tests {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
