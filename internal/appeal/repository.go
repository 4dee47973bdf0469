package appeal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritrack/veritrack/internal/shared"
)

// Repository persists appeals in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appealColumns = `
	a.id, a.company_id, a.dispatcher_id, a.date_of_get, a.client_full_name,
	a.address, a.phone_number, a.additional_info, a.status,
	a.created_at, a.updated_at,
	d.id, d.last_name, d.name`

const appealJoins = `
	FROM appeals a
	LEFT JOIN employees d ON d.id = a.dispatcher_id`

// List returns one page of appeals for the company plus the filtered
// total, newest first.
func (r *Repository) List(ctx context.Context, companyID int64, status Status, page, limit int) ([]Appeal, int, error) {
	where := "WHERE a.company_id = $1"
	args := []any{companyID}
	if status != "" {
		args = append(args, string(status))
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM appeals a "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appeals: %w", err)
	}

	paging := shared.NewPagination(page, limit, total)
	query := "SELECT " + appealColumns + appealJoins + " " + where +
		fmt.Sprintf(" ORDER BY a.date_of_get DESC, a.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, paging.PerPage, paging.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appeals: %w", err)
	}
	defer rows.Close()

	var appeals []Appeal
	for rows.Next() {
		appeal, err := scanAppeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appeal: %w", err)
		}
		appeals = append(appeals, appeal)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return appeals, total, nil
}

// Get returns one appeal by id within the company.
func (r *Repository) Get(ctx context.Context, companyID, appealID int64) (Appeal, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+appealColumns+appealJoins+" WHERE a.id = $1 AND a.company_id = $2",
		appealID, companyID,
	)
	appeal, err := scanAppeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appeal{}, shared.ErrNotFound
		}
		return Appeal{}, fmt.Errorf("get appeal: %w", err)
	}
	return appeal, nil
}

// Create inserts a new appeal and returns it with generated fields.
func (r *Repository) Create(ctx context.Context, companyID int64, dateOfGet time.Time, form Form) (Appeal, error) {
	status := form.Status
	if status == "" {
		status = StatusNew
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO appeals
			(company_id, dispatcher_id, date_of_get, client_full_name, address, phone_number, additional_info, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		companyID, form.DispatcherID, dateOfGet, form.ClientFullName,
		form.Address, form.PhoneNumber, form.AdditionalInfo, string(status),
	).Scan(&id)
	if err != nil {
		return Appeal{}, fmt.Errorf("insert appeal: %w", err)
	}
	return r.Get(ctx, companyID, id)
}

// Update rewrites the writable fields of an existing appeal.
func (r *Repository) Update(ctx context.Context, companyID, appealID int64, dateOfGet time.Time, form Form) (Appeal, error) {
	status := form.Status
	if status == "" {
		status = StatusNew
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE appeals
		 SET dispatcher_id = $1, date_of_get = $2, client_full_name = $3,
		     address = $4, phone_number = $5, additional_info = $6,
		     status = $7, updated_at = now()
		 WHERE id = $8 AND company_id = $9`,
		form.DispatcherID, dateOfGet, form.ClientFullName,
		form.Address, form.PhoneNumber, form.AdditionalInfo, string(status),
		appealID, companyID,
	)
	if err != nil {
		return Appeal{}, fmt.Errorf("update appeal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Appeal{}, shared.ErrNotFound
	}
	return r.Get(ctx, companyID, appealID)
}

// Delete removes one appeal within the company.
func (r *Repository) Delete(ctx context.Context, companyID, appealID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM appeals WHERE id = $1 AND company_id = $2`,
		appealID, companyID,
	)
	if err != nil {
		return fmt.Errorf("delete appeal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanAppeal(row pgx.Row) (Appeal, error) {
	var (
		appeal   Appeal
		status   string
		dispID   pgtype.Int8
		dispLast pgtype.Text
		dispName pgtype.Text
	)
	err := row.Scan(
		&appeal.ID, &appeal.CompanyID, &appeal.DispatcherID, &appeal.DateOfGet, &appeal.ClientFullName,
		&appeal.Address, &appeal.PhoneNumber, &appeal.AdditionalInfo, &status,
		&appeal.CreatedAt, &appeal.UpdatedAt,
		&dispID, &dispLast, &dispName,
	)
	if err != nil {
		return Appeal{}, err
	}
	appeal.Status = Status(status)
	if dispID.Valid {
		appeal.Dispatcher = &Dispatcher{ID: dispID.Int64, LastName: dispLast.String, Name: dispName.String}
	}
	return appeal, nil
}
