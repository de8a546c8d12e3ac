package http

import (
	"context"
	"net"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go.ringkeeper.dev/ring/chord"
)

// loopbackPeerClient is only used to satisfy chord.NodeConfig.Validate for a
// node that never actually calls out; these tests only exercise handlers and
// the client round-trip, not stabilization.
type loopbackPeerClient struct{}

func (loopbackPeerClient) GetPredecessor(ctx context.Context, peer chord.NodeRef) (chord.NodeRef, bool, error) {
	return chord.NodeRef{}, false, chord.ErrPeerUnreachable
}
func (loopbackPeerClient) GetSuccessors(ctx context.Context, peer chord.NodeRef) ([]chord.NodeRef, error) {
	return nil, chord.ErrPeerUnreachable
}
func (loopbackPeerClient) FindSuccessor(ctx context.Context, peer chord.NodeRef, target chord.Id, hops int) (int, chord.NodeRef, error) {
	return hops, chord.NodeRef{}, chord.ErrPeerUnreachable
}
func (loopbackPeerClient) Notify(ctx context.Context, peer chord.NodeRef, candidate chord.NodeRef) error {
	return chord.ErrPeerUnreachable
}
func (loopbackPeerClient) AdoptPredecessor(ctx context.Context, peer chord.NodeRef, candidate chord.NodeRef) error {
	return chord.ErrPeerUnreachable
}
func (loopbackPeerClient) Ping(ctx context.Context, peer chord.NodeRef) error {
	return chord.ErrPeerUnreachable
}

// newServerUnderTest starts an httptest server first so the node's
// advertised identity matches its actual listening port.
func newServerUnderTest(t *testing.T, host string) (*httptest.Server, *chord.LocalNode) {
	t.Helper()
	ts := httptest.NewUnstartedServer(nil)
	t.Cleanup(ts.Close)

	_, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	node, err := chord.NewLocalNode(chord.NodeConfig{
		Logger:                   zaptest.NewLogger(t),
		Self:                     chord.NewNodeRef(host, port),
		PeerClient:               loopbackPeerClient{},
		StabilizeInterval:        time.Second,
		FixFingerInterval:        time.Second,
		PredecessorCheckInterval: time.Second,
		ReJoinInterval:           time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, node.Create())
	t.Cleanup(func() { _ = node.Depart(context.Background()) })

	ts.Config.Handler = NewServer(node, zaptest.NewLogger(t))
	ts.Start()
	return ts, node
}

func clientTarget(t *testing.T, ts *httptest.Server) chord.NodeRef {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return chord.NewNodeRef(host, port)
}

func TestHandleSuccessorRoundTrip(t *testing.T) {
	ts, node := newServerUnderTest(t, "127.0.0.1")
	peer := clientTarget(t, ts)

	client := NewClient(nil)
	ctx := context.Background()

	successors, err := client.GetSuccessors(ctx, peer)
	require.NoError(t, err)
	require.Len(t, successors, 1)
	require.True(t, successors[0].Equal(node.Ref()))
}

func TestHandlePredecessorNotFound(t *testing.T) {
	ts, _ := newServerUnderTest(t, "127.0.0.1")
	peer := clientTarget(t, ts)

	client := NewClient(nil)
	_, ok, err := client.GetPredecessor(context.Background(), peer)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHandleNotifyThenPredecessorFound(t *testing.T) {
	ts, node := newServerUnderTest(t, "127.0.0.1")
	peer := clientTarget(t, ts)
	candidate := chord.NewNodeRef("10.0.0.5", 4000)

	client := NewClient(nil)
	ctx := context.Background()
	require.NoError(t, client.Notify(ctx, peer, candidate))

	pre, ok, err := node.GetPredecessor(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, pre.Equal(candidate))

	remotePre, ok, err := client.GetPredecessor(ctx, peer)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, remotePre.Equal(candidate))
}

func TestHandleAdoptPredecessorBypassesAcceptanceArc(t *testing.T) {
	ts, node := newServerUnderTest(t, "127.0.0.1")
	peer := clientTarget(t, ts)
	candidate := chord.NewNodeRef("10.0.0.5", 4000)

	client := NewClient(nil)
	ctx := context.Background()
	require.NoError(t, client.Notify(ctx, peer, candidate))

	// whether Notify would accept this second, unrelated candidate depends
	// on where the three ids fall on the ring (the server's port is random);
	// AdoptPredecessor installs it unconditionally either way.
	other := chord.NewNodeRef("10.0.0.6", 4001)
	require.NoError(t, client.AdoptPredecessor(ctx, peer, other))

	pre, ok, err := node.GetPredecessor(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, pre.Equal(other))
}

func TestHandleFindSuccessor(t *testing.T) {
	ts, node := newServerUnderTest(t, "127.0.0.1")
	peer := clientTarget(t, ts)

	client := NewClient(nil)
	hops, successor, err := client.FindSuccessor(context.Background(), peer, node.ID(), 0)
	require.NoError(t, err)
	require.Equal(t, 0, hops)
	require.True(t, successor.Equal(node.Ref()))
}

func TestPingUnreachablePeer(t *testing.T) {
	client := NewClient(nil)
	err := client.Ping(context.Background(), chord.NewNodeRef("127.0.0.1", 1))
	require.ErrorIs(t, err, chord.ErrPeerUnreachable)
}
