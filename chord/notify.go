package chord

import (
	"context"

	"go.uber.org/zap"
)

// Notify implements the idempotent predecessor-update protocol: a remote
// node believes it is our predecessor and is telling us so.
func (n *LocalNode) Notify(ctx context.Context, candidate NodeRef) error {
	if err := checkServable(n.life.Get()); err != nil {
		return err
	}

	current, ok := n.state.predecessorRef()
	if !ok {
		n.state.setPredecessor(&candidate)
		n.log.Info("discovered predecessor via notify",
			zap.Stringer("predecessor", candidate.ID))
		return nil
	}

	if current.Equal(candidate) {
		return nil
	}

	if InSuccessorRange(candidate.ID, current.ID, n.cfg.Self.ID) {
		n.state.setPredecessor(&candidate)
		n.log.Info("replaced predecessor via notify",
			zap.Stringer("previous", current.ID),
			zap.Stringer("predecessor", candidate.ID))
	}
	return nil
}

// AdoptPredecessor unconditionally installs candidate as our predecessor,
// bypassing Notify's acceptance arc. A departing node calls this on its
// successor with its own predecessor as candidate: that predecessor is
// outside the successor's acceptance arc by construction (it sits on the
// far side of the departing node), so the ordinary Notify check would
// reject the handoff every time. The departing node is vouching for a fact
// it already knows, not proposing a candidate for arbitration.
func (n *LocalNode) AdoptPredecessor(ctx context.Context, candidate NodeRef) error {
	if err := checkServable(n.life.Get()); err != nil {
		return err
	}
	n.state.setPredecessor(&candidate)
	n.log.Info("adopted predecessor via departure handoff",
		zap.Stringer("predecessor", candidate.ID))
	return nil
}
