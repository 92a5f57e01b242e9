package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// User is a backend account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepo manages backend accounts.
type UserRepo interface {
	// Create stores a new user; ErrConflict when the username or email is taken.
	Create(ctx context.Context, u *User) error
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
}

type userRepo struct {
	s *Store
}

func (s *Store) UserRepo() UserRepo {
	return &userRepo{s: s}
}

var userColumns = []string{"id", "username", "email", "password_hash", "created_at"}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	ins := r.s.builder().Insert(usersTable.Name).
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err := r.s.exec(ctx, ins); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*User, error) {
	return r.one(ctx, entsql.EQ("username", username))
}

func (r *userRepo) ByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *userRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	sel := r.s.builder().Select(userColumns...).
		From(entsql.Table(usersTable.Name)).
		Where(p).
		Limit(1)
	query, args := sel.Query()

	var u User
	err := r.s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
