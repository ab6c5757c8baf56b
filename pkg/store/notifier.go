// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"sync"

	"github.com/precisexyz/precise/pkg/ids"
)

// Change describes a committed write, published to feed subscribers.
type Change struct {
	Collection string `json:"collection"`
	ID         ids.ID `json:"id"`
}

// Notifier fans committed changes out to subscribers. Delivery is
// best-effort: a subscriber whose buffer is full misses the change.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel.
func (n *Notifier) Subscribe() (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Change, 256)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a change to every subscriber.
func (n *Notifier) Publish(ch Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.subs {
		select {
		case sub <- ch:
		default:
			// Buffer full, drop change
		}
	}
}

// Close closes all subscriber channels.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, sub := range n.subs {
		delete(n.subs, id)
		close(sub)
	}
}
