package chord

import (
	"context"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"go.ringkeeper.dev/ring/util"
)

// startTasks launches the four stabilizer goroutines, first stopping and
// waiting for any set a previous call left running.
func (n *LocalNode) startTasks() {
	n.taskMu.Lock()
	defer n.taskMu.Unlock()

	if n.stopCh != nil {
		close(n.stopCh)
		n.stopWg.Wait()
	}
	n.stopCh = make(chan struct{})
	n.stopWg.Add(4)
	go n.periodicTask(n.cfg.FixFingerInterval, n.updateFingerTable)
	go n.periodicTask(n.cfg.PredecessorCheckInterval, n.stabilizePredecessors)
	go n.periodicTask(n.cfg.StabilizeInterval, n.stabilizeSuccessors)
	go n.periodicTask(n.cfg.ReJoinInterval, n.reJoin)
}

func (n *LocalNode) stopTasks() {
	n.taskMu.Lock()
	defer n.taskMu.Unlock()

	if n.stopCh == nil {
		return
	}
	close(n.stopCh)
	n.stopWg.Wait()
	n.stopCh = nil
}

// periodicTask runs fn immediately, then on every tick of a jittered
// interval, until stopCh is closed. Each task serializes with itself:
// the next tick cannot start until fn returns.
func (n *LocalNode) periodicTask(interval time.Duration, fn func(ctx context.Context)) {
	defer n.stopWg.Done()

	stopCh := n.stopCh
	ctx := context.Background()
	fn(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-time.After(util.RandomTimeRange(interval)):
			fn(ctx)
		}
	}
}

func successorListFingerprint(refs []NodeRef) uint64 {
	h := xxh3.New()
	buf := make([]byte, IDBytes)
	for _, ref := range refs {
		copy(buf, ref.ID[:])
		h.Write(buf)
	}
	return h.Sum64()
}

// updateFingerTable refreshes one finger entry per tick, round-robin over
// the table, per the spec's stated bound on per-tick work.
func (n *LocalNode) updateFingerTable(ctx context.Context) {
	i := n.state.nextFingerToUpdate()
	start, _ := n.state.finger(i)

	_, succ, err := n.FindSuccessor(ctx, start, 0)
	if err != nil {
		n.log.Debug("fix finger lookup failed", zap.Int("index", i), zap.Error(err))
		return
	}
	n.state.replaceFinger(i, succ)
}

// stabilizePredecessors clears a predecessor that no longer responds;
// recovery is deferred to the next inbound Notify.
func (n *LocalNode) stabilizePredecessors(ctx context.Context) {
	pre, ok := n.state.predecessorRef()
	if !ok {
		return
	}
	if n.remote(pre).Ping(ctx) != nil {
		n.state.setPredecessor(nil)
		n.log.Info("discovered dead predecessor", zap.Stringer("old", pre.ID))
	}
}

// stabilizeSuccessors repairs successor[0] and refreshes the successor
// cache, per "How to Make Chord Correct".
func (n *LocalNode) stabilizeSuccessors(ctx context.Context) {
	succRef := n.state.successor()
	succ := n.remote(succRef)

	x, hasX, err := succ.GetPredecessor(ctx)
	if err == nil {
		if hasX && InFingerRange(x.ID, n.cfg.Self.ID, succRef.ID) {
			succRef = x
			succ = n.remote(succRef)
		}
		n.adoptSuccessor(ctx, succRef, succ)
		return
	}

	for _, candidate := range n.state.successorList() {
		if candidate.Equal(succRef) {
			continue
		}
		c := n.remote(candidate)
		if c.Ping(ctx) == nil {
			n.adoptSuccessor(ctx, candidate, c)
			return
		}
	}

	n.log.Error("no live entry in successor cache", zap.Error(ErrRingInconsistent))
	successor, rejoinErr := n.resolveSuccessorFromSeed(ctx, n.state.getSeed())
	if rejoinErr != nil {
		n.log.Error("failed to rejoin after losing successor cache", zap.Error(rejoinErr))
		return
	}
	n.state.replaceSuccessors([]NodeRef{successor})
}

func (n *LocalNode) adoptSuccessor(ctx context.Context, chosen NodeRef, remote VNode) {
	remoteList, err := remote.GetSuccessors(ctx)
	if err != nil {
		n.log.Debug("could not refresh successor cache from new successor", zap.Error(err))
		remoteList = nil
	}

	list := make([]NodeRef, 0, n.cfg.SuccessorListLength)
	list = append(list, chosen)
	for _, r := range remoteList {
		if len(list) >= n.cfg.SuccessorListLength {
			break
		}
		if r.Equal(n.cfg.Self) || r.Equal(chosen) {
			continue
		}
		list = append(list, r)
	}

	prevFingerprint := successorListFingerprint(n.state.successorList())
	if successorListFingerprint(list) != prevFingerprint {
		n.state.replaceSuccessors(list)
		n.log.Info("discovered new successor via stabilize", zap.Stringer("successor", chosen.ID))
	}

	if n.life.Get() == Leaving {
		// a departing node still answers lookups, but stops announcing
		// itself to its successor so the ring converges around its absence.
		return
	}
	if chosen.Equal(n.cfg.Self) {
		// a solo node does not notify itself: its predecessor stays unknown
		// until another member notifies it.
		return
	}
	if err := remote.Notify(ctx, n.cfg.Self); err != nil {
		n.log.Debug("notifying successor failed", zap.Error(err))
	}
}

// reJoin detects a split ring: if our seed is reachable directly but the
// ring's own routing no longer resolves back to it, we have partitioned
// and should rejoin through it.
func (n *LocalNode) reJoin(ctx context.Context) {
	if n.hasReJoinRun.CompareAndSwap(false, true) {
		return
	}

	seed := n.state.getSeed()
	if seed.Equal(n.cfg.Self) {
		return
	}

	_, resolved, err := n.FindSuccessor(ctx, seed.ID, 0)
	if err == nil && resolved.Equal(seed) {
		return
	}

	if n.remote(seed).Ping(ctx) != nil {
		return
	}

	n.log.Warn("ring appears partitioned from seed, rejoining", zap.String("seed", seed.String()))
	successor, err := n.resolveSuccessorFromSeed(ctx, seed)
	if err != nil {
		n.log.Error("rejoin failed", zap.Error(err))
		return
	}
	n.state.replaceSuccessors([]NodeRef{successor})
}
