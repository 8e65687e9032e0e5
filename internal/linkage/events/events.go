// Package events publishes run lifecycle events so downstream consumers can
// react to a finished linkage run.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names a lifecycle event.
type Type string

const (
	TypeRunStarted   Type = "run.started"
	TypeRunCompleted Type = "run.completed"
	TypeRunFailed    Type = "run.failed"
)

// Summary carries the counters of a completed run.
type Summary struct {
	FactsRead    int  `json:"facts_read"`
	InvalidFacts int  `json:"invalid_facts"`
	LinkedSets   int  `json:"linked_sets"`
	Instructions int  `json:"instructions"`
	Aliased      int  `json:"aliased"`
	Orphans      int  `json:"orphans"`
	Updated      int  `json:"updated"`
	Unmatched    int  `json:"unmatched"`
	Skipped      bool `json:"skipped"`
}

// RunEvent is one message on the run events topic, keyed by RunID.
type RunEvent struct {
	Type       Type      `json:"type"`
	RunID      string    `json:"run_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Digest     string    `json:"digest,omitempty"`
	Summary    *Summary  `json:"summary,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RunEvent) error { return nil }

// InMemoryPublisher records events in order.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []RunEvent
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, ev RunEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (p *InMemoryPublisher) Events() []RunEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RunEvent(nil), p.events...)
}

// Types returns the recorded event types in order.
func (p *InMemoryPublisher) Types() []Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Type, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
