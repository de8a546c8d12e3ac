package chord

import "go.uber.org/atomic"

// LifecycleState gates which operations a LocalNode will accept at a given
// time, per the node lifecycle described in the routing-state design notes.
type LifecycleState uint32

const (
	Inactive LifecycleState = iota
	Joining
	Active
	Leaving
	Left
)

func (s LifecycleState) String() string {
	switch s {
	case Inactive:
		return "Inactive"
	case Joining:
		return "Joining"
	case Active:
		return "Active"
	case Leaving:
		return "Leaving"
	case Left:
		return "Left"
	default:
		return "Unknown"
	}
}

type lifecycle struct {
	state atomic.Uint32
}

func newLifecycle() *lifecycle {
	l := &lifecycle{}
	l.state.Store(uint32(Inactive))
	return l
}

func (l *lifecycle) Get() LifecycleState {
	return LifecycleState(l.state.Load())
}

func (l *lifecycle) Set(v LifecycleState) {
	l.state.Store(uint32(v))
}

func (l *lifecycle) Transition(from, to LifecycleState) bool {
	return l.state.CompareAndSwap(uint32(from), uint32(to))
}

// checkServable returns the error an inbound RPC handler should surface for
// the given lifecycle state, per the Inactive/Left rejection rule. A
// departing node (Leaving) still answers so its neighbors don't see it as
// dead before it finishes notifying them.
func checkServable(state LifecycleState) error {
	switch state {
	case Inactive:
		return ErrNodeNotStarted
	case Left:
		return ErrNodeGone
	default:
		return nil
	}
}
