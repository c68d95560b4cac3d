package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// Account roles as stored. Customers carry RoleCustomer.
const (
	RoleCustomer = "user"
	RoleWorker   = "worker"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Account is a users row with its hashed password and, for workers, the
// worker profile.
type Account struct {
	models.User
	PasswordHash   string
	Specialization string
	Location       string
}

// AccountFilter narrows ListAccounts. Zero fields match everything.
type AccountFilter struct {
	Role     string
	IsActive *bool
	Status   string
	Limit    int
}

func (f AccountFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Role != "" {
		clauses = append(clauses, "u.role = ?")
		args = append(args, f.Role)
	}
	if f.IsActive != nil {
		clauses = append(clauses, "u.is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.Status != "" {
		clauses = append(clauses, "u.status = ?")
		args = append(args, f.Status)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const accountColumns = `u.id, u.first_name, u.last_name, u.email, u.password, u.phone, u.role, u.is_active, u.status,
	COALESCE(w.specialization, ''), COALESCE(w.location, '')
	FROM users u LEFT JOIN workers w ON w.user_id = u.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &a.Phone,
		&a.Role, &a.IsActive, &a.Status, &a.Specialization, &a.Location)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int) (*Account, error) {
	return scanAccount(s.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` WHERE u.id = ?`, id))
}

// GetAccountByEmail looks the address up case-insensitively.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(s.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` WHERE u.email = ?`, normalizeEmail(email)))
}

// ListAccounts returns up to f.Limit matching accounts, oldest first.
func (s *Store) ListAccounts(ctx context.Context, f AccountFilter) ([]Account, error) {
	where, args := f.where()
	query := `SELECT ` + accountColumns + where + ` ORDER BY u.id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// CountAccounts counts every account matching f, ignoring its Limit.
func (s *Store) CountAccounts(ctx context.Context, f AccountFilter) (int, error) {
	where, args := f.where()
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateAccount inserts a and, for workers, its worker profile. a.ID is set
// on success.
func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password, phone, role, is_active, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.FirstName, a.LastName, normalizeEmail(a.Email), a.PasswordHash, a.Phone, a.Role, a.IsActive, a.Status)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if a.Role == RoleWorker {
		if err := upsertWorker(ctx, tx, int(id), a); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.ID = int(id)
	return nil
}

// UpdateAccount overwrites the profile of a.ID. The email and password
// are only changed when non-empty.
func (s *Store) UpdateAccount(ctx context.Context, a *Account) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = affected(tx.ExecContext(ctx, `
		UPDATE users
		SET first_name = ?, last_name = ?, phone = ?, role = ?, is_active = ?, status = ?,
			email = COALESCE(NULLIF(?, ''), email),
			password = COALESCE(NULLIF(?, ''), password)
		WHERE id = ?`,
		a.FirstName, a.LastName, a.Phone, a.Role, a.IsActive, a.Status,
		normalizeEmail(a.Email), a.PasswordHash, a.ID))
	if err != nil {
		return err
	}
	if a.Role == RoleWorker {
		if err := upsertWorker(ctx, tx, a.ID, a); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertWorker(ctx context.Context, tx *sql.Tx, id int, a *Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO workers (user_id, specialization, location) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET specialization = excluded.specialization, location = excluded.location`,
		id, a.Specialization, a.Location)
	if err != nil {
		return fmt.Errorf("save worker profile %d: %w", id, err)
	}
	return nil
}

// DeleteAccount removes the account together with its worker profile and products.
func (s *Store) DeleteAccount(ctx context.Context, id int) error {
	return affected(s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

// EnsureAdmin seeds the admin account unless one with that email exists.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.GetAccountByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &Account{
		User: models.User{
			FirstName: "CarMate",
			LastName:  "Admin",
			Email:     email,
			Role:      RoleAdmin,
			IsActive:  true,
			Status:    models.StatusVerified,
		},
		PasswordHash: string(hash),
	}
	if err := s.CreateAccount(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
