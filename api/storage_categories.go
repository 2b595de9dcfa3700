package main

import (
	"context"
	"database/sql"
	"errors"
)

func (s *storage) getCategoriesForUser(userID int) ([]category, error) {
	query := `SELECT id, name, color, user_id, created_at, updated_at
			  FROM categories
			  WHERE user_id = $1
			  ORDER BY name ASC`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []category{}
	for rows.Next() {
		var c category
		err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// getCategoryByID is owner scoped: a category belonging to another user is
// indistinguishable from a missing one.
func (s *storage) getCategoryByID(id, userID int) (*category, error) {
	query := `SELECT id, name, color, user_id, created_at, updated_at
			  FROM categories
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id, userID)
	var c category
	err := row.Scan(&c.ID, &c.Name, &c.Color, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &c, nil
}

// categoryNameExists reports whether the owner already has a category with
// the given name. excludeID skips the record being updated; pass 0 on create.
func (s *storage) categoryNameExists(name string, userID, excludeID int) (bool, error) {
	query := `SELECT EXISTS (
				SELECT 1 FROM categories
				WHERE name = $1 AND user_id = $2 AND id <> $3
			  )`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	var exists bool
	err := s.db.QueryRowContext(ctx, query, name, userID, excludeID).Scan(&exists)
	return exists, err
}

func (s *storage) insertCategory(c *category) error {
	query := `INSERT INTO categories (name, color, user_id)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, c.Name, c.Color, c.UserID)
	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (s *storage) updateCategory(c *category) error {
	query := `UPDATE categories
			  SET name = $1, color = $2, updated_at = NOW()
			  WHERE id = $3 AND user_id = $4
			  RETURNING updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, c.Name, c.Color, c.ID, c.UserID)
	return row.Scan(&c.UpdatedAt)
}

// deleteCategory removes the row; tasks referencing it get a NULL category
// via the ON DELETE SET NULL foreign key.
func (s *storage) deleteCategory(id, userID int) error {
	query := `DELETE FROM categories
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, id, userID)
	return err
}
