package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritrack/veritrack/internal/shared"
)

// Repository persists verification entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DeletedEntry carries what the caller needs after a delete: which
// counters to adjust without refetching the list.
type DeletedEntry struct {
	ID       int64
	Verified bool
}

const listColumns = `
	ve.id, ve.company_id, ve.verification_date, ve.end_verification_date,
	ve.mpi_interval, ve.factory_number, ve.meter_info, ve.manufacture_year,
	ve.water_type, ve.verification_result, ve.address, ve.client_full_name,
	ve.client_phone, ve.created_at, ve.updated_at,
	e.id, e.last_name, e.name, e.patronymic,
	c.id, c.name,
	an.id, an.act_number,
	rn.id, rn.si_type, rn.registry_number,
	m.id, m.modification_name,
	s.id, s.name,
	l.id, l.name`

const listJoins = `
	FROM verification_entries ve
	LEFT JOIN employees e ON e.id = ve.employee_id
	LEFT JOIN cities c ON c.id = ve.city_id
	LEFT JOIN act_numbers an ON an.id = ve.act_number_id
	LEFT JOIN registry_numbers rn ON rn.id = ve.registry_number_id
	LEFT JOIN si_modifications m ON m.id = ve.modification_id
	LEFT JOIN act_series s ON s.id = ve.series_id
	LEFT JOIN locations l ON l.id = ve.location_id`

// List returns one page of entries plus the total and verified counts
// for the filter.
func (r *Repository) List(ctx context.Context, companyID int64, f Filter) ([]Entry, int, int, error) {
	where, args := buildWhere(companyID, f)

	var total, verified int
	countQuery := `SELECT count(*), count(*) FILTER (WHERE ve.verification_result) FROM verification_entries ve ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total, &verified); err != nil {
		return nil, 0, 0, fmt.Errorf("count entries: %w", err)
	}

	paging := shared.NewPagination(f.Page, f.Limit, total)
	query := "SELECT " + listColumns + listJoins + " " + where +
		fmt.Sprintf(" ORDER BY ve.verification_date DESC, ve.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, paging.PerPage, paging.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}
	return entries, total, verified, nil
}

// Delete removes an entry, returns its act-number slot and decrements
// the location counter inside one transaction.
func (r *Repository) Delete(ctx context.Context, companyID, entryID int64) (DeletedEntry, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DeletedEntry{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		deleted    DeletedEntry
		locationID pgtype.Int8
		actID      pgtype.Int8
	)
	err = tx.QueryRow(ctx,
		`SELECT id, verification_result, location_id, act_number_id
		 FROM verification_entries
		 WHERE id = $1 AND company_id = $2
		 FOR UPDATE`,
		entryID, companyID,
	).Scan(&deleted.ID, &deleted.Verified, &locationID, &actID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeletedEntry{}, shared.ErrNotFound
		}
		return DeletedEntry{}, err
	}

	if locationID.Valid {
		if _, err := tx.Exec(ctx,
			`UPDATE locations SET count = GREATEST(count - 1, 0) WHERE id = $1`,
			locationID.Int64,
		); err != nil {
			return DeletedEntry{}, fmt.Errorf("decrement location: %w", err)
		}
	}
	if actID.Valid {
		// The slot on the paper act becomes usable again.
		if _, err := tx.Exec(ctx,
			`UPDATE act_numbers SET count = count + 1 WHERE id = $1`,
			actID.Int64,
		); err != nil {
			return DeletedEntry{}, fmt.Errorf("return act number slot: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM verification_entries WHERE id = $1`, deleted.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return DeletedEntry{}, fmt.Errorf("entry %d still referenced: %w", deleted.ID, err)
		}
		return DeletedEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return DeletedEntry{}, err
	}
	return deleted, nil
}

func buildWhere(companyID int64, f Filter) (string, []any) {
	clauses := []string{"ve.company_id = $1"}
	args := []any{companyID}

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if !f.DateFrom.IsZero() {
		add("ve.verification_date >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("ve.verification_date <= $%d", f.DateTo)
	}
	if f.ClientAddress != "" {
		add("ve.address ILIKE '%%' || $%d || '%%'", f.ClientAddress)
	}
	if f.FactoryNumber != "" {
		add("ve.factory_number = $%d", f.FactoryNumber)
	}
	if f.ClientPhone != "" {
		add("ve.client_phone LIKE '%%' || $%d || '%%'", f.ClientPhone)
	}
	if f.SeriesID > 0 {
		add("ve.series_id = $%d", f.SeriesID)
	}
	if f.CityID > 0 {
		add("ve.city_id = $%d", f.CityID)
	}
	if f.EmployeeID > 0 {
		add("ve.employee_id = $%d", f.EmployeeID)
	}
	if f.WaterType != "" {
		add("ve.water_type = $%d", string(f.WaterType))
	}
	if f.ActNumber > 0 {
		add("ve.act_number_id IN (SELECT id FROM act_numbers WHERE act_number = $%d)", f.ActNumber)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanEntry(rows pgx.Rows) (Entry, error) {
	var (
		entry       Entry
		emplID      pgtype.Int8
		emplLast    pgtype.Text
		emplName    pgtype.Text
		emplPatr    pgtype.Text
		cityID      pgtype.Int8
		cityName    pgtype.Text
		actID       pgtype.Int8
		actNumber   pgtype.Int8
		regID       pgtype.Int8
		regSIType   pgtype.Text
		regNumber   pgtype.Text
		modID       pgtype.Int8
		modName     pgtype.Text
		seriesID    pgtype.Int8
		seriesName  pgtype.Text
		locID       pgtype.Int8
		locName     pgtype.Text
		waterType   string
	)
	err := rows.Scan(
		&entry.ID, &entry.CompanyID, &entry.VerificationDate, &entry.EndVerificationDate,
		&entry.Interval, &entry.FactoryNumber, &entry.MeterInfo, &entry.ManufactureYear,
		&waterType, &entry.Result, &entry.Address, &entry.ClientFullName,
		&entry.ClientPhone, &entry.CreatedAt, &entry.UpdatedAt,
		&emplID, &emplLast, &emplName, &emplPatr,
		&cityID, &cityName,
		&actID, &actNumber,
		&regID, &regSIType, &regNumber,
		&modID, &modName,
		&seriesID, &seriesName,
		&locID, &locName,
	)
	if err != nil {
		return Entry{}, err
	}
	entry.WaterType = WaterType(waterType)
	if emplID.Valid {
		entry.Employee = &Employee{ID: emplID.Int64, LastName: emplLast.String, Name: emplName.String, Patronymic: emplPatr.String}
	}
	if cityID.Valid {
		entry.City = &City{ID: cityID.Int64, Name: cityName.String}
	}
	if actID.Valid {
		entry.ActNumber = &ActNumber{ID: actID.Int64, Number: actNumber.Int64}
	}
	if regID.Valid {
		entry.RegistryNumber = &RegistryNumber{ID: regID.Int64, SIType: regSIType.String, Number: regNumber.String}
	}
	if modID.Valid {
		entry.Modification = &Modification{ID: modID.Int64, Name: modName.String}
	}
	if seriesID.Valid {
		entry.Series = &Series{ID: seriesID.Int64, Name: seriesName.String}
	}
	if locID.Valid {
		entry.Location = &Location{ID: locID.Int64, Name: locName.String}
	}
	return entry, nil
}
