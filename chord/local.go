package chord

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// LocalNode is this process's own ring member: the only VNode implementation
// that touches routingState directly. Every other VNode the process talks to
// is a RemoteNode delegating to a PeerClient.
type LocalNode struct {
	cfg NodeConfig
	log *zap.Logger

	state *routingState
	life  *lifecycle

	stopCh chan struct{}
	stopWg sync.WaitGroup
	taskMu sync.Mutex // guards start/stop against concurrent Create/Join/Depart

	hasReJoinRun atomic.Bool
}

var _ VNode = (*LocalNode)(nil)

func NewLocalNode(cfg NodeConfig) (*LocalNode, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LocalNode{
		cfg:   cfg,
		log:   cfg.Logger,
		state: newRoutingState(cfg.Self),
		life:  newLifecycle(),
	}, nil
}

func (n *LocalNode) Ref() NodeRef { return n.cfg.Self }
func (n *LocalNode) ID() Id       { return n.cfg.Self.ID }

// LifecycleState reports the node's current position in the
// Inactive/Joining/Active/Leaving/Left state machine.
func (n *LocalNode) LifecycleState() LifecycleState { return n.life.Get() }

func (n *LocalNode) Ping(ctx context.Context) error {
	return checkServable(n.life.Get())
}

func (n *LocalNode) GetPredecessor(ctx context.Context) (NodeRef, bool, error) {
	if err := checkServable(n.life.Get()); err != nil {
		return NodeRef{}, false, err
	}
	ref, ok := n.state.predecessorRef()
	return ref, ok, nil
}

func (n *LocalNode) GetSuccessors(ctx context.Context) ([]NodeRef, error) {
	if err := checkServable(n.life.Get()); err != nil {
		return nil, err
	}
	return n.state.successorList(), nil
}

// Create starts a solo ring: the node is its own successor and predecessor
// is left unknown.
func (n *LocalNode) Create() error {
	if !n.life.Transition(Inactive, Joining) {
		return errNotInactive
	}
	n.log.Info("creating new ring", zap.Stringer("self", n.cfg.Self.ID))

	n.state.replaceSuccessors([]NodeRef{n.cfg.Self})
	n.startTasks()
	n.life.Set(Active)
	return nil
}
