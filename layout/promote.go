package layout

// Action is a direct manipulation a user performs on a document.
type Action string

const (
	// ActionDrag is a pointer-driven document move.
	ActionDrag Action = "drag"
	// ActionResize is a pointer-driven document resize.
	ActionResize Action = "resize"
)

// ValidActions returns all valid action values.
func ValidActions() []Action {
	return []Action{ActionDrag, ActionResize}
}

// IsValid returns true if the action is a known value.
func (a Action) IsValid() bool {
	for _, valid := range ValidActions() {
		if a == valid {
			return true
		}
	}
	return false
}

// ShouldPromote decides whether a user action forces the workspace out of a
// structured mode into Freeform. Manual placement is taken as intent to
// break from structure, so any drag or resize in Stacked or Grid promotes;
// a workspace already in Freeform never transitions.
func ShouldPromote(current Mode, action Action) bool {
	if current == ModeFreeform {
		return false
	}
	return action == ActionDrag || action == ActionResize
}
