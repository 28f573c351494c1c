package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, name, email_address, role, active, supplier_code, application_id, created_at`

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u             model.User
		role          string
		supplierCode  sql.NullInt64
		applicationID sql.NullInt64
	)
	if err := s.Scan(&u.ID, &u.Name, &u.EmailAddress, &role, &u.Active, &supplierCode, &applicationID, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.SupplierCode = int64Ptr(supplierCode)
	u.ApplicationID = int64Ptr(applicationID)
	return &u, nil
}

// FindByID fetches a single user.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail matches the address case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email_address) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByIDs returns the users among ids that exist, ordered by id.
func (r *UserPostgres) FindByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// EmailsForSupplier returns the addresses of the supplier's active users.
func (r *UserPostgres) EmailsForSupplier(ctx context.Context, supplierCode int64) ([]string, error) {
	const q = `SELECT email_address FROM users WHERE supplier_code = $1 AND active ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, supplierCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
