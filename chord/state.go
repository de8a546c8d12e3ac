package chord

import "sync"

// SuccessorListLength is S, the size of the successor cache.
const SuccessorListLength = 3

type fingerEntry struct {
	mu        sync.RWMutex
	start     Id
	successor NodeRef
}

func (f *fingerEntry) get() (Id, NodeRef) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.start, f.successor
}

func (f *fingerEntry) set(successor NodeRef) {
	f.mu.Lock()
	f.successor = successor
	f.mu.Unlock()
}

// routingState is the mutable record described for a ring member: the
// successor cache, predecessor pointer, and finger table. Every write is
// scoped to a single field; no method here performs network I/O, and no
// lock is ever held across one.
type routingState struct {
	local NodeRef

	seedMu sync.RWMutex
	seed   NodeRef

	predecessorMu sync.RWMutex
	predecessor   *NodeRef // nil means "no predecessor known"

	successorsMu sync.RWMutex
	successors   []NodeRef

	fingers [IDBits]fingerEntry

	nextFingerMu sync.Mutex
	nextFinger   int
}

func newRoutingState(local NodeRef) *routingState {
	rs := &routingState{
		local:      local,
		seed:       local,
		successors: []NodeRef{local},
	}
	for i := 0; i < IDBits; i++ {
		rs.fingers[i].start = local.ID.AddPow2(i)
		rs.fingers[i].successor = local
	}
	return rs
}

func (rs *routingState) setSeed(n NodeRef) {
	requireValidRef(n)
	rs.seedMu.Lock()
	rs.seed = n
	rs.seedMu.Unlock()
}

func (rs *routingState) getSeed() NodeRef {
	rs.seedMu.RLock()
	defer rs.seedMu.RUnlock()
	return rs.seed
}

// setSuccessor stores n as the immediate (slot 0) successor.
func (rs *routingState) setSuccessor(n NodeRef) {
	requireValidRef(n)
	rs.successorsMu.Lock()
	if len(rs.successors) == 0 {
		rs.successors = []NodeRef{n}
	} else {
		rs.successors[0] = n
	}
	rs.successorsMu.Unlock()
}

func (rs *routingState) successor() NodeRef {
	rs.successorsMu.RLock()
	defer rs.successorsMu.RUnlock()
	if len(rs.successors) == 0 {
		return rs.local
	}
	return rs.successors[0]
}

func (rs *routingState) successorList() []NodeRef {
	rs.successorsMu.RLock()
	defer rs.successorsMu.RUnlock()
	out := make([]NodeRef, len(rs.successors))
	copy(out, rs.successors)
	return out
}

func (rs *routingState) replaceSuccessors(list []NodeRef) {
	for _, n := range list {
		requireValidRef(n)
	}
	rs.successorsMu.Lock()
	rs.successors = list
	rs.successorsMu.Unlock()
}

func (rs *routingState) setPredecessor(n *NodeRef) {
	if n != nil {
		requireValidRef(*n)
	}
	rs.predecessorMu.Lock()
	rs.predecessor = n
	rs.predecessorMu.Unlock()
}

func (rs *routingState) predecessorRef() (NodeRef, bool) {
	rs.predecessorMu.RLock()
	defer rs.predecessorMu.RUnlock()
	if rs.predecessor == nil {
		return NodeRef{}, false
	}
	return *rs.predecessor, true
}

func (rs *routingState) replaceFinger(i int, n NodeRef) {
	requireValidRef(n)
	rs.fingers[i].set(n)
}

func (rs *routingState) finger(i int) (Id, NodeRef) {
	return rs.fingers[i].get()
}

// nextFingerToUpdate returns the current round-robin cursor and advances it,
// wrapping back to zero at M.
func (rs *routingState) nextFingerToUpdate() int {
	rs.nextFingerMu.Lock()
	defer rs.nextFingerMu.Unlock()
	i := rs.nextFinger
	rs.nextFinger++
	if rs.nextFinger >= IDBits {
		rs.nextFinger = 0
	}
	return i
}

// requireValidRef panics on a malformed NodeRef: storing one would corrupt
// routing state, so this is an internal invariant violation, not a
// recoverable error.
func requireValidRef(n NodeRef) {
	if n.Host == "" || n.Port == 0 {
		panic("chord: refusing to store invalid NodeRef into routing state")
	}
}
