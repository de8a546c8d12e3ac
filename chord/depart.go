package chord

import (
	"context"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// departHandoffAttempts bounds the best-effort predecessor handoff to the
// successor on depart; unlike Join's seed probe this isn't on the critical
// path of becoming servable, so a handful of attempts is enough.
const departHandoffAttempts = 3

// Depart gracefully removes this node from the ring: it tells its successor
// to adopt its predecessor immediately, rather than waiting out a stabilizer
// timeout, then stops the periodic tasks. The predecessor is not contacted;
// it repairs its own successor pointer through stabilizeSuccessors. There is
// no key handoff: this module carries no storage layer.
func (n *LocalNode) Depart(ctx context.Context) error {
	if !n.life.Transition(Active, Leaving) {
		return errNotActive
	}

	pre, hasPre := n.state.predecessorRef()
	succ := n.state.successor()

	if succ.Equal(n.cfg.Self) && (!hasPre || pre.Equal(n.cfg.Self)) {
		n.log.Info("departing solo ring")
		n.life.Set(Left)
		n.stopTasks()
		return nil
	}

	if !succ.Equal(n.cfg.Self) && hasPre {
		// tell our successor to adopt our predecessor directly, rather
		// than waiting for it to notice we've stopped responding and
		// fall back through its successor cache. This bypasses Notify's
		// acceptance arc: our predecessor sits outside the successor's
		// arc by construction, so an ordinary Notify would be rejected.
		remote := n.remote(succ)
		err := retry.Do(func() error {
			return remote.AdoptPredecessor(ctx, pre)
		},
			retry.Context(ctx),
			retry.Attempts(departHandoffAttempts),
			retry.Delay(n.cfg.StabilizeInterval),
			retry.RetryIf(ErrorIsRetryable),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			n.log.Warn("best-effort predecessor handoff to successor failed on depart", zap.Error(err))
		}
	}

	// the predecessor has no equivalent "adopt this successor" RPC to call
	// proactively; its own stabilizeSuccessors will detect us as dead on
	// its next tick and fail over through its successor cache, which
	// already contains our successor.
	n.log.Info("departed ring", zap.Stringer("successor", succ.ID), zap.Bool("had_predecessor", hasPre))
	n.life.Set(Left)
	n.stopTasks()
	return nil
}
