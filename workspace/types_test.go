package workspace

import "testing"

func TestDocumentStateIsValid(t *testing.T) {
	for _, state := range ValidDocumentStates() {
		if !state.IsValid() {
			t.Errorf("expected %q to be valid", state)
		}
	}

	if DocumentState("archived").IsValid() {
		t.Error("expected unknown state to be invalid")
	}
	if DocumentState("").IsValid() {
		t.Error("expected empty state to be invalid")
	}
}
