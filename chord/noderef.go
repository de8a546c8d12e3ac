package chord

import "fmt"

// NodeRef is the immutable address and ring position of a ring member.
// Two NodeRefs are equal when their (Host, Port) match.
type NodeRef struct {
	Host string
	Port int
	ID   Id
}

func NewNodeRef(host string, port int) NodeRef {
	return NodeRef{
		Host: host,
		Port: port,
		ID:   ComputeID(host, port),
	}
}

func (n NodeRef) Equal(other NodeRef) bool {
	return n.Host == other.Host && n.Port == other.Port
}

func (n NodeRef) IsZero() bool {
	return n.Host == "" && n.Port == 0
}

func (n NodeRef) String() string {
	return fmt.Sprintf("%s:%d#%s", n.Host, n.Port, n.ID)
}
