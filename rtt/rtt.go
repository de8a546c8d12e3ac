// Package rtt tracks recent round-trip latency samples per peer, consumed
// by the HTTP peer client so an operator surface (out of scope here) would
// have data to show.
package rtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/zhangyunhao116/skipmap"

	"go.ringkeeper.dev/ring/chord"
	"go.ringkeeper.dev/ring/util"
)

type Recorder interface {
	Record(peer chord.NodeRef, latencyMillis float64)
	Snapshot(peer chord.NodeRef, last time.Duration) *Statistics
	Drop(peer chord.NodeRef)
}

type Statistics struct {
	Since             time.Time
	Until             time.Time
	Min               time.Duration
	Average           time.Duration
	Max               time.Duration
	StandardDeviation time.Duration
}

func (s *Statistics) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("min/avg/max/mdev = %v/%v/%v/%v", s.Min, s.Average, s.Max, s.StandardDeviation)
}

type point struct {
	time  time.Time
	value float64
}

type container struct {
	mu   sync.RWMutex
	data []point
}

// Instrumentation is the concrete, in-memory Recorder: a lock-free map of
// per-peer sample windows, bounded to the most recent `length` points.
type Instrumentation struct {
	measurement *skipmap.StringMap[*container]
	length      int
}

var _ Recorder = (*Instrumentation)(nil)

func NewInstrumentation(length int) *Instrumentation {
	return &Instrumentation{
		measurement: skipmap.NewString[*container](),
		length:      length,
	}
}

func (i *Instrumentation) Record(peer chord.NodeRef, latencyMillis float64) {
	if latencyMillis < 0 {
		return
	}
	c, _ := i.measurement.LoadOrStoreLazy(peer.String(), func() *container {
		return &container{data: make([]point, 0)}
	})
	c.mu.Lock()
	if len(c.data) > 0 && len(c.data) >= i.length {
		c.data = c.data[1:]
	}
	c.data = append(c.data, point{time: time.Now(), value: latencyMillis})
	c.mu.Unlock()
}

func (i *Instrumentation) Snapshot(peer chord.NodeRef, last time.Duration) *Statistics {
	c, ok := i.measurement.Load(peer.String())
	if !ok {
		return nil
	}

	values := make([]float64, 0)
	var since, until time.Time
	c.mu.RLock()
	for _, p := range c.data {
		if time.Since(p.time) <= last {
			if since.IsZero() {
				since = p.time
			}
			until = p.time
			values = append(values, p.value)
		}
	}
	c.mu.RUnlock()
	if len(values) < 1 {
		return nil
	}

	toDuration := func(v float64, err error) time.Duration {
		return time.Duration(util.Must(v, err)) * time.Millisecond
	}
	return &Statistics{
		Since:             since,
		Until:             until,
		Min:               toDuration(stats.Min(values)),
		Average:           toDuration(stats.Mean(values)),
		Max:               toDuration(stats.Max(values)),
		StandardDeviation: toDuration(stats.StandardDeviation(values)),
	}
}

func (i *Instrumentation) Drop(peer chord.NodeRef) {
	i.measurement.Delete(peer.String())
}
