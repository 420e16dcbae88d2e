package ids

import (
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate("input", DefaultLength)
	b := Generate("input", DefaultLength)
	if a != b {
		t.Errorf("expected identical ids, got %q and %q", a, b)
	}
	if len(a) != DefaultLength {
		t.Errorf("expected length %d, got %d", DefaultLength, len(a))
	}
	if a != strings.ToLower(a) {
		t.Errorf("expected lowercase id, got %q", a)
	}
}

func TestGenerateZeroLength(t *testing.T) {
	if got := Generate("input", 0); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

func TestRandomIDsAreDistinct(t *testing.T) {
	var g Random
	if g.DocumentID() == g.DocumentID() {
		t.Error("expected distinct random document ids")
	}
	if !strings.HasPrefix(g.WorkspaceID(), "ws-") {
		t.Error("workspace ids carry the ws- prefix")
	}
	if !strings.HasPrefix(g.DocumentID(), "doc-") {
		t.Error("document ids carry the doc- prefix")
	}
}

func TestDeterministicSequenceRepeats(t *testing.T) {
	first := NewDeterministic("seed")
	second := NewDeterministic("seed")

	for i := 0; i < 3; i++ {
		a, b := first.DocumentID(), second.DocumentID()
		if a != b {
			t.Fatalf("sequence diverged at %d: %q vs %q", i, a, b)
		}
	}

	other := NewDeterministic("other")
	if NewDeterministic("seed").DocumentID() == other.DocumentID() {
		t.Error("different seeds should produce different ids")
	}
}
