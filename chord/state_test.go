package chord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoutingStateSuccessorDefaultsToSelf(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	rs := newRoutingState(local)

	require.True(t, rs.successor().Equal(local))
	require.Equal(t, []NodeRef{local}, rs.successorList())
}

func TestRoutingStateReplaceSuccessors(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	other := NewNodeRef("127.0.0.1", 9001)
	rs := newRoutingState(local)

	rs.replaceSuccessors([]NodeRef{other, local})
	require.True(t, rs.successor().Equal(other))
	require.Len(t, rs.successorList(), 2)
}

func TestRoutingStatePredecessorRoundTrip(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	rs := newRoutingState(local)

	_, ok := rs.predecessorRef()
	require.False(t, ok)

	other := NewNodeRef("127.0.0.1", 9001)
	rs.setPredecessor(&other)
	got, ok := rs.predecessorRef()
	require.True(t, ok)
	require.True(t, got.Equal(other))

	rs.setPredecessor(nil)
	_, ok = rs.predecessorRef()
	require.False(t, ok)
}

func TestRoutingStateFingerTableInitializedToSelf(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	rs := newRoutingState(local)

	for i := 0; i < IDBits; i++ {
		start, succ := rs.finger(i)
		require.True(t, start.Equal(local.ID.AddPow2(i)))
		require.True(t, succ.Equal(local))
	}
}

func TestRoutingStateNextFingerToUpdateWraps(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	rs := newRoutingState(local)

	seen := make(map[int]bool)
	for i := 0; i < IDBits; i++ {
		seen[rs.nextFingerToUpdate()] = true
	}
	require.Len(t, seen, IDBits)
	require.Equal(t, 0, rs.nextFingerToUpdate())
}

func TestRequireValidRefPanicsOnZeroValue(t *testing.T) {
	local := NewNodeRef("127.0.0.1", 9000)
	rs := newRoutingState(local)

	require.Panics(t, func() {
		rs.setSuccessor(NodeRef{})
	})
}
