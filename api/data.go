package main

import "time"

const (
	roleUser  = "user"
	roleAdmin = "admin"
)

var (
	taskStatuses   = []string{"pending", "in_progress", "completed", "cancelled"}
	taskPriorities = []string{"low", "medium", "high"}
)

const defaultCategoryColor = "#3498db"

type user struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	APIKey       *string   `json:"api_key,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// identity is the authenticated caller as resolved by either auth strategy.
// Bearer identities come straight from verified claims; api-key identities
// are re-read from the users table on every request.
type identity struct {
	ID       int
	Username string
	Email    string
	Role     string
}

type category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	CategoryID   *int       `json:"category_id"`
	CategoryName *string    `json:"category_name"`
	UserID       int        `json:"user_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type settings struct {
	APIRateLimit   int
	APITokenExpiry int
}

type pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}
