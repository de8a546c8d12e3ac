package chord

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// NodeConfig holds everything a LocalNode needs to start. Successor cache
// size and hop ceiling default to sensible constants when left zero.
type NodeConfig struct {
	Logger     *zap.Logger
	Self       NodeRef
	PeerClient PeerClient

	StabilizeInterval        time.Duration
	FixFingerInterval        time.Duration
	PredecessorCheckInterval time.Duration
	ReJoinInterval           time.Duration

	SuccessorListLength int
	MaxLookupHops       int
}

func (c *NodeConfig) Validate() error {
	if c == nil {
		return errors.New("nil NodeConfig")
	}
	if c.Logger == nil {
		return errors.New("nil Logger")
	}
	if c.Self.IsZero() {
		return errors.New("nil Self NodeRef")
	}
	if c.PeerClient == nil {
		return errors.New("nil PeerClient")
	}
	if c.StabilizeInterval <= 0 {
		return errors.New("invalid StabilizeInterval, must be positive")
	}
	if c.FixFingerInterval <= 0 {
		return errors.New("invalid FixFingerInterval, must be positive")
	}
	if c.PredecessorCheckInterval <= 0 {
		return errors.New("invalid PredecessorCheckInterval, must be positive")
	}
	if c.ReJoinInterval <= 0 {
		return errors.New("invalid ReJoinInterval, must be positive")
	}
	return nil
}

func (c *NodeConfig) setDefaults() {
	if c.SuccessorListLength <= 0 {
		c.SuccessorListLength = SuccessorListLength
	}
	if c.MaxLookupHops <= 0 {
		c.MaxLookupHops = 2 * IDBits
	}
}
