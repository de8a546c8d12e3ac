// Package http binds the chord package's abstract PeerClient to a concrete
// request/response transport: a go-chi server exposing /dht/v1/*, and a
// pooled net/http client consuming the same surface.
package http

import (
	"fmt"
	"net/url"
	"strconv"

	"go.ringkeeper.dev/ring/chord"
)

// nodeResource is the wire shape for a NodeRef: host, port, and the 40-char
// hex form of its identifier.
type nodeResource struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	ID   string `json:"id"`
}

func toResource(ref chord.NodeRef) nodeResource {
	return nodeResource{Host: ref.Host, Port: ref.Port, ID: ref.ID.String()}
}

func fromResource(r nodeResource) (chord.NodeRef, error) {
	id, err := chord.IdFromHex(r.ID)
	if err != nil {
		return chord.NodeRef{}, err
	}
	return chord.NodeRef{Host: r.Host, Port: r.Port, ID: id}, nil
}

type successorResponse struct {
	Hops      int          `json:"hops"`
	Successor nodeResource `json:"successor"`
}

func nodeRefQuery(host string, port int) string {
	v := url.Values{}
	v.Set("host", host)
	v.Set("port", strconv.Itoa(port))
	return v.Encode()
}

func parseHostPort(values url.Values) (string, int, error) {
	host := values.Get("host")
	portStr := values.Get("port")
	if host == "" || portStr == "" {
		return "", 0, fmt.Errorf("missing host or port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return "", 0, fmt.Errorf("invalid port")
	}
	return host, port, nil
}
