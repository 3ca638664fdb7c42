package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/wedding-seating/internal/persistence"
)

// AccessCodeRepository implements persistence.AccessCodeRepository using
// SQLite. Codes are read-only at runtime; creation happens during setup.
type AccessCodeRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAccessCodeRepository creates a new SQLite access code repository.
func NewAccessCodeRepository(pool *ConnectionPool) *AccessCodeRepository {
	return &AccessCodeRepository{pool: pool, mapper: NewErrorMapper()}
}

// GetAccessCode retrieves an access code case-insensitively.
func (r *AccessCodeRepository) GetAccessCode(ctx context.Context, code string) (persistence.AccessCode, error) {
	query := `SELECT id, code, label, active, created_at FROM access_codes WHERE code = ?`

	accessCode, err := scanAccessCode(r.pool.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return persistence.AccessCode{}, r.mapper.MapError(err)
	}

	return accessCode, nil
}

// CreateAccessCode inserts a new shared secret.
func (r *AccessCodeRepository) CreateAccessCode(ctx context.Context, code persistence.AccessCode) error {
	query := `
		INSERT INTO access_codes (id, code, label, active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		code.ID,
		code.Code,
		optionalString(code.Label),
		boolToInt(code.Active),
		formatTime(code.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// ListAccessCodes returns every code ordered by creation time.
func (r *AccessCodeRepository) ListAccessCodes(ctx context.Context) ([]persistence.AccessCode, error) {
	query := `SELECT id, code, label, active, created_at FROM access_codes ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var codes []persistence.AccessCode
	for rows.Next() {
		code, err := scanAccessCode(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return codes, nil
}

func scanAccessCode(row rowScanner) (persistence.AccessCode, error) {
	var code persistence.AccessCode
	var label sql.NullString
	var active int
	var createdAt string

	err := row.Scan(&code.ID, &code.Code, &label, &active, &createdAt)
	if err != nil {
		return persistence.AccessCode{}, err
	}

	code.Label = fromNullString(label)
	code.Active = active != 0

	if code.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AccessCode{}, err
	}

	return code, nil
}
