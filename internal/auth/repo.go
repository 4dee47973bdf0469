package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritrack/veritrack/internal/shared"
)

// Repository abstracts employee account lookups.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Employee, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches an employee account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var emp Employee
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, email, password_hash, last_name, name, is_active, created_at
		 FROM employees
		 WHERE email = $1`,
		email,
	).Scan(&emp.ID, &emp.CompanyID, &emp.Email, &emp.PasswordHash, &emp.LastName, &emp.Name, &emp.IsActive, &emp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}
