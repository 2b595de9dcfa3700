package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestSortColumn(t *testing.T) {
	tests := []struct {
		sortBy string
		want   string
	}{
		{"title", "title"},
		{"due_date", "due_date"},
		{"status", "status"},
		{"priority", "priority"},
		{"created_at", "created_at"},
		{"", "created_at"},
		{"id", "created_at"},
		{"user_id; DROP TABLE tasks", "created_at"},
	}
	for _, tc := range tests {
		t.Run(tc.sortBy, func(t *testing.T) {
			f := taskFilters{SortBy: tc.sortBy}
			if got := f.sortColumn(); got != tc.want {
				t.Errorf("sortColumn(%q) = %q, want %q", tc.sortBy, got, tc.want)
			}
		})
	}
}

func TestSortDirection(t *testing.T) {
	tests := []struct {
		sortOrder string
		want      string
	}{
		{"asc", "ASC"},
		{"ASC", "ASC"},
		{"Asc", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"sideways", "DESC"},
	}
	for _, tc := range tests {
		t.Run(tc.sortOrder, func(t *testing.T) {
			f := taskFilters{SortOrder: tc.sortOrder}
			if got := f.sortDirection(); got != tc.want {
				t.Errorf("sortDirection(%q) = %q, want %q", tc.sortOrder, got, tc.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}
	for _, tc := range tests {
		f := taskFilters{Page: tc.page, Limit: tc.limit}
		if got := f.offset(); got != tc.want {
			t.Errorf("offset(page=%d, limit=%d) = %d, want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestBuildTasksQueryNoFilters(t *testing.T) {
	query, args := buildTasksQuery(7, taskFilters{Page: 1, Limit: 10})

	wantArgs := []any{7, 10, 0}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("got args %v, want %v", args, wantArgs)
	}
	for _, frag := range []string{
		"WHERE t.user_id = $1",
		"ORDER BY t.created_at DESC",
		"LIMIT $2 OFFSET $3",
		"LEFT JOIN categories c ON c.id = t.category_id",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
	if strings.Contains(query, " AND ") {
		t.Errorf("query has filter predicates without filters:\n%s", query)
	}
}

func TestBuildTasksQueryAllFilters(t *testing.T) {
	f := taskFilters{
		CategoryID: 3,
		Status:     "pending",
		Priority:   "high",
		Search:     "milk",
		SortBy:     "due_date",
		SortOrder:  "asc",
		Page:       2,
		Limit:      20,
	}
	query, args := buildTasksQuery(7, f)

	wantArgs := []any{7, 3, "pending", "high", "%milk%", "%milk%", 20, 20}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("got args %v, want %v", args, wantArgs)
	}
	for _, frag := range []string{
		"WHERE t.user_id = $1",
		"AND t.category_id = $2",
		"AND t.status = $3",
		"AND t.priority = $4",
		"AND (t.title ILIKE $5 OR t.description ILIKE $6)",
		"ORDER BY t.due_date ASC",
		"LIMIT $7 OFFSET $8",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
}

func TestBuildTasksCountQueryMirrorsPredicates(t *testing.T) {
	f := taskFilters{
		Status: "completed",
		Search: "report",
		SortBy: "title",
		Page:   3,
		Limit:  5,
	}
	pageQuery, pageArgs := buildTasksQuery(9, f)
	countQuery, countArgs := buildTasksCountQuery(9, f)

	// The count query shares the page query's predicates and bound values,
	// but no sorting or pagination.
	if !reflect.DeepEqual(countArgs, pageArgs[:len(pageArgs)-2]) {
		t.Errorf("count args %v don't mirror page args %v", countArgs, pageArgs)
	}
	if !strings.Contains(countQuery, "SELECT COUNT(*)") {
		t.Errorf("count query is not a count:\n%s", countQuery)
	}
	for _, frag := range []string{"WHERE t.user_id = $1", "AND t.status = $2", "ILIKE $3"} {
		if !strings.Contains(countQuery, frag) {
			t.Errorf("count query missing %q:\n%s", frag, countQuery)
		}
	}
	for _, frag := range []string{"ORDER BY", "LIMIT", "OFFSET"} {
		if strings.Contains(countQuery, frag) {
			t.Errorf("count query must not contain %q:\n%s", frag, countQuery)
		}
	}
	_ = pageQuery
}
