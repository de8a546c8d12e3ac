package chord

import (
	"context"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const seedJoinAttempts = 5

// Join contacts seed, resolves our own identifier through it, and adopts the
// answer as our successor. Does not touch predecessor: the existing
// predecessor of our new successor will learn of us through Notify once the
// stabilizer runs.
func (n *LocalNode) Join(ctx context.Context, seed NodeRef) error {
	if !n.life.Transition(Inactive, Joining) {
		return errNotInactive
	}

	n.state.setSeed(seed)
	n.log.Info("joining ring", zap.String("seed", seed.String()))

	successor, err := n.resolveSuccessorFromSeed(ctx, seed)
	if err != nil {
		n.life.Set(Inactive)
		return err
	}

	n.state.replaceSuccessors([]NodeRef{successor})
	n.startTasks()
	n.life.Set(Active)

	n.log.Info("joined ring", zap.Stringer("successor", successor.ID))
	return nil
}

// resolveSuccessorFromSeed liveness-probes seed with bounded retry, then
// asks it to resolve our own identifier. Shared by Join and the rejoin
// recovery path in the stabilizer, neither of which wants to touch the
// Inactive/Joining/Active lifecycle machine on their own.
func (n *LocalNode) resolveSuccessorFromSeed(ctx context.Context, seed NodeRef) (NodeRef, error) {
	remote := n.remote(seed)

	err := retry.Do(func() error {
		return remote.Ping(ctx)
	},
		retry.Context(ctx),
		retry.Attempts(seedJoinAttempts),
		retry.Delay(n.cfg.StabilizeInterval),
		retry.RetryIf(ErrorIsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			n.log.Warn("retrying seed liveness probe", zap.Uint("attempt", attempt), zap.Error(err))
		}),
	)
	if err != nil {
		return NodeRef{}, ErrSeedUnreachable
	}

	_, successor, err := remote.FindSuccessor(ctx, n.cfg.Self.ID, 0)
	if err != nil {
		return NodeRef{}, err
	}
	return successor, nil
}
