package store

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// RoleAdmin is the only role with privileges beyond ownership.
const RoleAdmin = "admin"

// RoleUser is granted to every account at signup.
const RoleUser = "user"

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	Roles        []string  `db:"-"`
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user with the given roles. Returns ErrDuplicate if the
// email is already registered.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string, roles []string) (*User, error) {
	u := &User{
		ID:           newID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
		Roles:        roles,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	for _, role := range roles {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`), u.ID, role)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getOne(ctx, sq.Eq{"email": email})
}

// GetByID returns the user matching id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), passwordHash, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddRole grants role to the user. Granting a role the user already has is a no-op.
func (s *UserStore) AddRole(ctx context.Context, id, role string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`), id, role)
	if isUniqueConstraintError(err) {
		return nil
	}
	return err
}

// Count returns the number of registered users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (s *UserStore) getOne(ctx context.Context, where sq.Eq) (*User, error) {
	query, args, err := sq.Select("*").From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var u User
	err = s.db.GetContext(ctx, &u, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Roles = []string{}
	err = s.db.SelectContext(ctx, &u.Roles, s.db.Rebind(`
		SELECT role FROM user_roles WHERE user_id = ? ORDER BY role ASC
	`), u.ID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
