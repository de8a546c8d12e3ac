package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.ringkeeper.dev/ring/chord"
)

const defaultCallTimeout = 2 * time.Second

var errNotFound = fmt.Errorf("chord/transport: peer responded 404")

// RTTRecorder is the one method Client needs from a latency recorder;
// rtt.Instrumentation satisfies it.
type RTTRecorder interface {
	Record(peer chord.NodeRef, latencyMillis float64)
}

// Client implements chord.PeerClient over plain HTTP/JSON against the
// /dht/v1/* surface, using a single pooled *http.Client for every peer.
type Client struct {
	httpClient *http.Client
	rtt        RTTRecorder
	timeout    time.Duration
}

var _ chord.PeerClient = (*Client)(nil)

func NewClient(rtt RTTRecorder) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultCallTimeout},
		rtt:        rtt,
		timeout:    defaultCallTimeout,
	}
}

func (c *Client) peerURL(peer chord.NodeRef, path string) string {
	return fmt.Sprintf("http://%s:%d%s", peer.Host, peer.Port, path)
}

func (c *Client) do(ctx context.Context, peer chord.NodeRef, method, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if c.rtt != nil {
		c.rtt.Record(peer, float64(elapsed.Milliseconds()))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", chord.ErrPeerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: peer returned status %d", chord.ErrPeerUnreachable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Ping(ctx context.Context, peer chord.NodeRef) error {
	return c.do(ctx, peer, http.MethodGet, c.peerURL(peer, "/dht/v1/successor"), nil)
}

func (c *Client) GetPredecessor(ctx context.Context, peer chord.NodeRef) (chord.NodeRef, bool, error) {
	var res nodeResource
	err := c.do(ctx, peer, http.MethodGet, c.peerURL(peer, "/dht/v1/predecessor"), &res)
	if err != nil {
		if err == errNotFound {
			return chord.NodeRef{}, false, nil
		}
		return chord.NodeRef{}, false, err
	}
	ref, err := fromResource(res)
	if err != nil {
		return chord.NodeRef{}, false, err
	}
	return ref, true, nil
}

func (c *Client) GetSuccessors(ctx context.Context, peer chord.NodeRef) ([]chord.NodeRef, error) {
	var resources []nodeResource
	if err := c.do(ctx, peer, http.MethodGet, c.peerURL(peer, "/dht/v1/successors"), &resources); err != nil {
		return nil, err
	}
	out := make([]chord.NodeRef, 0, len(resources))
	for _, r := range resources {
		ref, err := fromResource(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func (c *Client) FindSuccessor(ctx context.Context, peer chord.NodeRef, target chord.Id, hops int) (int, chord.NodeRef, error) {
	path := fmt.Sprintf("/dht/v1/successor/%s?hops=%s", target.String(), strconv.Itoa(hops))
	var res successorResponse
	if err := c.do(ctx, peer, http.MethodGet, c.peerURL(peer, path), &res); err != nil {
		return hops, chord.NodeRef{}, err
	}
	ref, err := fromResource(res.Successor)
	if err != nil {
		return hops, chord.NodeRef{}, err
	}
	return res.Hops, ref, nil
}

func (c *Client) Notify(ctx context.Context, peer chord.NodeRef, candidate chord.NodeRef) error {
	path := "/dht/v1/notify?" + nodeRefQuery(candidate.Host, candidate.Port)
	return c.do(ctx, peer, http.MethodPost, c.peerURL(peer, path), nil)
}

func (c *Client) AdoptPredecessor(ctx context.Context, peer chord.NodeRef, candidate chord.NodeRef) error {
	path := "/dht/v1/adopt-predecessor?" + nodeRefQuery(candidate.Host, candidate.Port)
	return c.do(ctx, peer, http.MethodPost, c.peerURL(peer, path), nil)
}
