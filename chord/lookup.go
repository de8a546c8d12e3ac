package chord

import (
	"context"

	"go.uber.org/zap"
)

// FindSuccessor answers "who owns target", forwarding to the closest
// preceding finger when the answer isn't local. hops is the caller's
// running hop count and is forwarded incremented by one; target is always
// forwarded unchanged in the recursive case — an earlier revision of this
// forwarded the local node's own id instead of the caller's target, which
// broke convergence under churn.
func (n *LocalNode) FindSuccessor(ctx context.Context, target Id, hops int) (int, NodeRef, error) {
	if err := checkServable(n.life.Get()); err != nil {
		return hops, NodeRef{}, err
	}
	if hops > n.cfg.MaxLookupHops {
		return hops, NodeRef{}, ErrLookupTooManyHops
	}

	succ := n.state.successor()
	if InSuccessorRange(target, n.cfg.Self.ID, succ.ID) {
		return hops, succ, nil
	}

	closest, err := n.closestPrecedingFinger(ctx, target)
	if err != nil {
		return hops, NodeRef{}, err
	}
	if closest.Equal(n.cfg.Self) {
		// no live finger or cache entry precedes target any better than we do
		return hops, succ, nil
	}

	remote := n.remote(closest)
	return remote.FindSuccessor(ctx, target, hops+1)
}

// closestPrecedingFinger scans the finger table high-to-low for the
// furthest-reaching live node strictly between us and target, falling back
// to the successor cache, and finally to the local node itself.
func (n *LocalNode) closestPrecedingFinger(ctx context.Context, target Id) (NodeRef, error) {
	for i := IDBits - 1; i >= 0; i-- {
		_, candidate := n.state.finger(i)
		if candidate.Equal(n.cfg.Self) {
			continue
		}
		if !InFingerRange(candidate.ID, n.cfg.Self.ID, target) {
			continue
		}
		if n.remote(candidate).Ping(ctx) == nil {
			return candidate, nil
		}
	}

	for _, candidate := range n.state.successorList() {
		if candidate.Equal(n.cfg.Self) {
			continue
		}
		if !InFingerRange(candidate.ID, n.cfg.Self.ID, target) {
			continue
		}
		if n.remote(candidate).Ping(ctx) == nil {
			return candidate, nil
		}
	}

	n.log.Debug("no live finger or successor precedes target, deferring to self",
		zap.Stringer("target", target))
	return n.cfg.Self, nil
}

// remote wraps a NodeRef as a VNode, short-circuiting to the receiver
// itself when the ref names this process.
func (n *LocalNode) remote(ref NodeRef) VNode {
	if ref.Equal(n.cfg.Self) {
		return n
	}
	return newRemoteNode(ref, n.cfg.PeerClient)
}
