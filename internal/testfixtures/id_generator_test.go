package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("guest")

	if got := gen.Next(); got != "guest-1" {
		t.Fatalf("expected guest-1, got %q", got)
	}
	if got := gen.Next(); got != "guest-2" {
		t.Fatalf("expected guest-2, got %q", got)
	}
}

func TestIDGeneratorDefaultPrefix(t *testing.T) {
	gen := NewIDGenerator("")

	if got := gen.Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %q", got)
	}
}

func TestIDGeneratorNextFunc(t *testing.T) {
	gen := NewIDGenerator("table")
	next := gen.NextFunc()

	if got := next(); got != "table-1" {
		t.Fatalf("expected table-1, got %q", got)
	}
	if got := gen.Next(); got != "table-2" {
		t.Fatalf("expected shared sequence, got %q", got)
	}
}
