package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/pointertrack/internal/pointer"
)

// ErrUnknownAction is returned when an input record names an action other
// than down, move, up, cancel or reset.
var ErrUnknownAction = errors.New("unknown action")

// Action is the kind of pointer event in a recorded stream.
type Action string

const (
	ActionDown   Action = "down"
	ActionMove   Action = "move"
	ActionUp     Action = "up"
	ActionCancel Action = "cancel"
	ActionReset  Action = "reset"
)

// ParseAction parses an action name, ignoring case and surrounding space.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionDown, ActionMove, ActionUp, ActionCancel, ActionReset:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Op is one recorded event together with what happened to the pointer.
type Op struct {
	Action Action
	Event  pointer.Event
}

// Apply drives t with the op: down adds, move moves, up and cancel remove,
// reset forgets every pointer.
func (op Op) Apply(t *pointer.Tracker) {
	switch op.Action {
	case ActionDown:
		t.Add(op.Event)
	case ActionMove:
		t.Move(op.Event)
	case ActionUp, ActionCancel:
		t.Remove(op.Event.PointerID)
	case ActionReset:
		t.Reset()
	}
}
