package chord

import "context"

// VNode unifies local and remote ring members so the lookup and stabilizer
// logic doesn't need to know which kind of node it is talking to.
type VNode interface {
	Ref() NodeRef
	ID() Id
	Ping(ctx context.Context) error
	Notify(ctx context.Context, candidate NodeRef) error
	AdoptPredecessor(ctx context.Context, candidate NodeRef) error
	GetPredecessor(ctx context.Context) (NodeRef, bool, error)
	GetSuccessors(ctx context.Context) ([]NodeRef, error)
	FindSuccessor(ctx context.Context, target Id, hops int) (int, NodeRef, error)
}
