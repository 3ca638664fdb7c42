package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/wedding-seating/internal/persistence"
)

func TestTableRepository_CreateAndGet(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewTableRepository(pool)
	ctx := context.Background()

	table := testTable("table-1", 3, 8)
	name := "Table des mariés"
	table.Name = &name
	table.VIP = true

	if err := repo.CreateTable(ctx, table); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	retrieved, err := repo.GetTable(ctx, "table-1")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if retrieved.Number != 3 || retrieved.Capacity != 8 || !retrieved.VIP {
		t.Fatalf("unexpected table: %+v", retrieved)
	}
	if retrieved.Name == nil || *retrieved.Name != name {
		t.Fatalf("unexpected table name: %v", retrieved.Name)
	}
}

func TestTableRepository_DuplicateNumber(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewTableRepository(pool)
	ctx := context.Background()

	if err := repo.CreateTable(ctx, testTable("table-1", 1, 8)); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := repo.CreateTable(ctx, testTable("table-2", 1, 6)); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a reused table number, got %v", err)
	}
}

func TestTableRepository_InvalidCapacity(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewTableRepository(pool)
	ctx := context.Background()

	if err := repo.CreateTable(ctx, testTable("table-1", 1, 0)); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for zero capacity, got %v", err)
	}
}

func TestTableRepository_ListTables(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewTableRepository(pool)
	ctx := context.Background()

	// Insert out of numeric order to confirm the query orders by number.
	for _, table := range []persistence.Table{
		testTable("table-b", 12, 8),
		testTable("table-a", 3, 6),
	} {
		if err := repo.CreateTable(ctx, table); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}
	}

	tables, err := repo.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 2 || tables[0].Number != 3 || tables[1].Number != 12 {
		t.Fatalf("unexpected list order: %+v", tables)
	}
}

func TestTableRepository_UpdateAndDelete(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewTableRepository(pool)
	ctx := context.Background()

	table := testTable("table-1", 1, 8)
	if err := repo.CreateTable(ctx, table); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	table.Capacity = 10
	if err := repo.UpdateTable(ctx, table); err != nil {
		t.Fatalf("UpdateTable failed: %v", err)
	}
	retrieved, err := repo.GetTable(ctx, "table-1")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if retrieved.Capacity != 10 {
		t.Fatalf("expected capacity 10, got %d", retrieved.Capacity)
	}

	if err := repo.DeleteTable(ctx, "table-1"); err != nil {
		t.Fatalf("DeleteTable failed: %v", err)
	}
	if _, err := repo.GetTable(ctx, "table-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
