package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/wedding-seating/internal/persistence"
)

// TableRepository implements persistence.TableRepository using SQLite.
type TableRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewTableRepository creates a new SQLite table repository.
func NewTableRepository(pool *ConnectionPool) *TableRepository {
	return &TableRepository{pool: pool, mapper: NewErrorMapper()}
}

const tableColumns = `id, table_number, table_name, capacity, vip, color, created_at, updated_at`

// CreateTable inserts a new table. A duplicate table_number surfaces as
// persistence.ErrDuplicate, a non-positive capacity as ErrConstraintViolation.
func (r *TableRepository) CreateTable(ctx context.Context, table persistence.Table) error {
	if table.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if table.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO tables (` + tableColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		table.ID,
		table.Number,
		optionalString(table.Name),
		table.Capacity,
		boolToInt(table.VIP),
		optionalString(table.Color),
		formatTime(table.CreatedAt),
		formatTime(table.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateTable updates an existing table.
func (r *TableRepository) UpdateTable(ctx context.Context, table persistence.Table) error {
	if table.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE tables
		SET table_number = ?, table_name = ?, capacity = ?, vip = ?, color = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		table.Number,
		optionalString(table.Name),
		table.Capacity,
		boolToInt(table.VIP),
		optionalString(table.Color),
		formatTime(table.UpdatedAt),
		table.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetTable retrieves a table by ID.
func (r *TableRepository) GetTable(ctx context.Context, id string) (persistence.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`

	table, err := scanTable(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Table{}, r.mapper.MapError(err)
	}

	return table, nil
}

// ListTables returns all tables ordered by table number.
func (r *TableRepository) ListTables(ctx context.Context) ([]persistence.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables ORDER BY table_number ASC`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var tables []persistence.Table
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return tables, nil
}

// DeleteTable removes a table by ID. The foreign key from
// seating_assignments rejects the delete while guests remain seated.
func (r *TableRepository) DeleteTable(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func scanTable(row rowScanner) (persistence.Table, error) {
	var table persistence.Table
	var name, color sql.NullString
	var vip int
	var createdAt, updatedAt string

	err := row.Scan(
		&table.ID,
		&table.Number,
		&name,
		&table.Capacity,
		&vip,
		&color,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Table{}, err
	}

	table.Name = fromNullString(name)
	table.Color = fromNullString(color)
	table.VIP = vip != 0

	if table.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Table{}, err
	}
	if table.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Table{}, err
	}

	return table, nil
}
