package chord

import (
	"context"
	"errors"
)

var retryableMap = map[error]bool{
	context.DeadlineExceeded: true,
}

func errorDef(str string, retryable bool) error {
	err := errors.New(str)
	retryableMap[err] = retryable
	return err
}

// ErrorIsRetryable reports whether err is worth retrying, used by retry.RetryIf.
// Wrapped errors count: a transport error wrapping ErrPeerUnreachable is retryable.
func ErrorIsRetryable(err error) bool {
	for known, retryable := range retryableMap {
		if retryable && errors.Is(err, known) {
			return true
		}
	}
	return false
}

var (
	ErrNodeNotStarted    = errorDef("chord: node is not running", false)
	ErrNodeGone          = errorDef("chord: node is no longer part of the ring", false)
	ErrNodeNoSuccessor   = errorDef("chord: node has no successor, possibly invalid ring", false)
	ErrLookupTooManyHops = errorDef("chord: lookup exceeded hop ceiling, possible routing loop", false)
	ErrSeedUnreachable   = errorDef("chord: seed node is unreachable", true)
	ErrRingInconsistent  = errorDef("chord: no live entry in successor cache", true)
	ErrPeerUnreachable   = errorDef("chord: peer did not respond", true)

	errNotInactive = errorDef("chord: node is not in the Inactive state", false)
	errNotActive   = errorDef("chord: node is not in the Active state", false)
)
