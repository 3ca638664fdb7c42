package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/wedding-seating/internal/persistence"
)

// TableService orchestrates validation, authorization, and persistence for
// the table catalog. Capacity edits and deletes never silently evict seated
// guests: shrinking below the current occupancy and deleting an occupied
// table are both rejected.
type TableService struct {
	tables      persistence.TableRepository
	assignments persistence.AssignmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTableService constructs a table service with the provided dependencies.
func NewTableService(tables persistence.TableRepository, assignments persistence.AssignmentRepository, idGenerator func() string, now func() time.Time) *TableService {
	return NewTableServiceWithLogger(tables, assignments, idGenerator, now, nil)
}

// NewTableServiceWithLogger constructs a table service with a specified logger.
func NewTableServiceWithLogger(tables persistence.TableRepository, assignments persistence.AssignmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TableService {
	if idGenerator == nil {
		idGenerator = NewIDGenerator()
	}
	if now == nil {
		now = time.Now
	}
	return &TableService{
		tables:      tables,
		assignments: assignments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TableService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TableService", operation, attrs...)
}

// CreateTable validates input and persists a new table for administrators.
func (s *TableService) CreateTable(ctx context.Context, params CreateTableParams) (table Table, err error) {
	if s == nil {
		err = fmt.Errorf("TableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTable", "principal_id", params.Principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create table", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("table_id", table.ID).InfoContext(ctx, "table created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateTableInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	table = Table{
		ID:        s.idGenerator(),
		Number:    params.Input.Number,
		Name:      normalizeOptionalString(params.Input.Name),
		Capacity:  params.Input.Capacity,
		VIP:       params.Input.VIP,
		Color:     normalizeOptionalString(params.Input.Color),
		CreatedAt: s.now(),
	}
	table.UpdatedAt = table.CreatedAt

	if err = s.tables.CreateTable(ctx, toPersistenceTable(table)); err != nil {
		err = mapTableRepoError(err)
		table = Table{}
		return
	}

	return
}

// UpdateTable validates input and updates an existing table. A capacity
// below the table's current occupancy is rejected rather than leaving
// seated guests beyond capacity.
func (s *TableService) UpdateTable(ctx context.Context, params UpdateTableParams) (table Table, err error) {
	if s == nil {
		err = fmt.Errorf("TableService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "UpdateTable",
		"principal_id", params.Principal.SessionID,
		"table_id", params.TableID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update table", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "table updated")
	}()

	stored, err := s.tables.GetTable(ctx, params.TableID)
	if err != nil {
		err = mapTableRepoError(err)
		return
	}
	existing := toApplicationTable(stored)

	vErr := validateTableInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if params.Input.Capacity < existing.Capacity {
		var occupied int
		occupied, err = s.assignments.CountAssignmentsForTable(ctx, params.TableID)
		if err != nil {
			return
		}
		if params.Input.Capacity < occupied {
			err = ErrTableOccupied
			return
		}
	}

	updated := existing
	updated.Number = params.Input.Number
	updated.Name = normalizeOptionalString(params.Input.Name)
	updated.Capacity = params.Input.Capacity
	updated.VIP = params.Input.VIP
	updated.Color = normalizeOptionalString(params.Input.Color)
	updated.UpdatedAt = s.now()

	if err = s.tables.UpdateTable(ctx, toPersistenceTable(updated)); err != nil {
		err = mapTableRepoError(err)
		return
	}

	table = updated
	return
}

// GetTable returns a table by id.
func (s *TableService) GetTable(ctx context.Context, principal Principal, tableID string) (Table, error) {
	if s == nil {
		return Table{}, fmt.Errorf("TableService is nil")
	}
	if !principal.IsAdmin {
		return Table{}, ErrUnauthorized
	}

	stored, err := s.tables.GetTable(ctx, tableID)
	if err != nil {
		return Table{}, mapTableRepoError(err)
	}
	return toApplicationTable(stored), nil
}

// ListTables returns the catalog ordered by table number.
func (s *TableService) ListTables(ctx context.Context, principal Principal) (tables []Table, err error) {
	if s == nil {
		err = fmt.Errorf("TableService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "ListTables", "principal_id", principal.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list tables", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(tables)).InfoContext(ctx, "tables listed")
	}()

	stored, err := s.tables.ListTables(ctx)
	if err != nil {
		err = mapTableRepoError(err)
		return
	}

	tables = make([]Table, 0, len(stored))
	for _, model := range stored {
		tables = append(tables, toApplicationTable(model))
	}
	return
}

// DeleteTable removes a table when no guest is seated at it. Deleting an
// occupied table is rejected so assignments never dangle.
func (s *TableService) DeleteTable(ctx context.Context, principal Principal, tableID string) error {
	if s == nil {
		return fmt.Errorf("TableService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteTable",
		"principal_id", principal.SessionID,
		"table_id", tableID,
	)

	occupied, err := s.assignments.CountAssignmentsForTable(ctx, tableID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete table", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if occupied > 0 {
		logger.ErrorContext(ctx, "failed to delete table", "error", ErrTableOccupied, "error_kind", ErrorKind(ErrTableOccupied))
		return ErrTableOccupied
	}

	if err := s.tables.DeleteTable(ctx, tableID); err != nil {
		err = mapTableRepoError(err)
		logger.ErrorContext(ctx, "failed to delete table", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "table deleted")
	return nil
}

func validateTableInput(input TableInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Number <= 0 {
		vErr.add("table_number", "table number must be positive")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func mapTableRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrDuplicateCode
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
