package env

import "testing"

func TestGetFallsBack(t *testing.T) {
	t.Setenv("LASTROS_TEST_EMPTY", "  ")
	if got := Get("LASTROS_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("LASTROS_TEST_SET", "value")
	if got := Get("LASTROS_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestFirstPicksEarliestSet(t *testing.T) {
	t.Setenv("LASTROS_TEST_A", "")
	t.Setenv("LASTROS_TEST_B", "3001")
	if got := First("8080", "LASTROS_TEST_A", "LASTROS_TEST_B"); got != "3001" {
		t.Fatalf("expected 3001, got %q", got)
	}
	if got := First("8080", "LASTROS_TEST_MISSING"); got != "8080" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
