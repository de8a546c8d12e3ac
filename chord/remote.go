package chord

import "context"

// RemoteNode adapts a NodeRef + PeerClient pair to the VNode interface, so
// the lookup and stabilizer logic can treat local and remote ring members
// identically.
type RemoteNode struct {
	ref    NodeRef
	client PeerClient
}

var _ VNode = (*RemoteNode)(nil)

func newRemoteNode(ref NodeRef, client PeerClient) *RemoteNode {
	return &RemoteNode{ref: ref, client: client}
}

func (n *RemoteNode) Ref() NodeRef { return n.ref }
func (n *RemoteNode) ID() Id       { return n.ref.ID }

func (n *RemoteNode) Ping(ctx context.Context) error {
	return n.client.Ping(ctx, n.ref)
}

func (n *RemoteNode) Notify(ctx context.Context, candidate NodeRef) error {
	return n.client.Notify(ctx, n.ref, candidate)
}

func (n *RemoteNode) AdoptPredecessor(ctx context.Context, candidate NodeRef) error {
	return n.client.AdoptPredecessor(ctx, n.ref, candidate)
}

func (n *RemoteNode) GetPredecessor(ctx context.Context) (NodeRef, bool, error) {
	return n.client.GetPredecessor(ctx, n.ref)
}

func (n *RemoteNode) GetSuccessors(ctx context.Context) ([]NodeRef, error) {
	return n.client.GetSuccessors(ctx, n.ref)
}

func (n *RemoteNode) FindSuccessor(ctx context.Context, target Id, hops int) (int, NodeRef, error) {
	return n.client.FindSuccessor(ctx, n.ref, target, hops)
}
