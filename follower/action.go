package follower

// Action is the discrete outcome of a single follower decision. Forward, Left
// and Right are executable movement primitives; Stop and Error are terminal
// signals for the current goal.
type Action int

const (
	ActionError   Action = -2
	ActionStop    Action = -1
	ActionForward Action = 0
	ActionLeft    Action = 1
	ActionRight   Action = 2
)

// Terminal reports whether the action ends pursuit of the current goal.
func (a Action) Terminal() bool {
	return a == ActionStop || a == ActionError
}

func (a Action) String() string {
	switch a {
	case ActionError:
		return "error"
	case ActionStop:
		return "stop"
	case ActionForward:
		return "forward"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	default:
		return "unknown"
	}
}
