package chord

import "context"

// PeerClient is the abstract outbound RPC surface a LocalNode uses to talk to
// any other ring member. RemoteNode delegates every VNode method to one of
// these. The reference binding lives in transport/http.
type PeerClient interface {
	GetPredecessor(ctx context.Context, peer NodeRef) (NodeRef, bool, error)
	GetSuccessors(ctx context.Context, peer NodeRef) ([]NodeRef, error)
	FindSuccessor(ctx context.Context, peer NodeRef, target Id, hops int) (int, NodeRef, error)
	Notify(ctx context.Context, peer NodeRef, candidate NodeRef) error
	AdoptPredecessor(ctx context.Context, peer NodeRef, candidate NodeRef) error
	Ping(ctx context.Context, peer NodeRef) error
}
