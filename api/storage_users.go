package main

import (
	"context"
	"database/sql"
	"errors"
)

func (s *storage) scanUserRow(row *sql.Row) (*user, error) {
	var u user
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.APIKey, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByID(id int) (*user, error) {
	query := `SELECT id, username, email, password_hash, api_key, role, created_at, updated_at
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, id))
}

func (s *storage) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, username, email, password_hash, api_key, role, created_at, updated_at
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, email))
}

func (s *storage) getUserByUsernameOrEmail(username, email string) (*user, error) {
	query := `SELECT id, username, email, password_hash, api_key, role, created_at, updated_at
			  FROM users
			  WHERE username = $1 OR email = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, username, email))
}

func (s *storage) getUserByAPIKey(key string) (*user, error) {
	query := `SELECT id, username, email, password_hash, api_key, role, created_at, updated_at
			  FROM users
			  WHERE api_key = $1`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, key))
}

func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (username, email, password_hash, api_key, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.APIKey, u.Role)
	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (s *storage) updateUserPassword(id int, passwordHash []byte) error {
	query := `UPDATE users
			  SET password_hash = $1, updated_at = NOW()
			  WHERE id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, passwordHash, id)
	return err
}
