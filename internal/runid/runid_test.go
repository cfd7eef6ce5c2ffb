package runid

import "testing"

func TestNewIsStableLength(t *testing.T) {
	id := New()
	if len(id) != 12 {
		t.Fatalf("got length %d, want 12", len(id))
	}
}

func TestNewDistinctAcrossCalls(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatalf("two consecutive calls returned the same id %q", a)
	}
}
