/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package event

import (
	"context"
	"sort"
	"sync"
)

// Listener handles a dispatched event. Returning an error aborts the dispatch.
type Listener func(ctx context.Context, evt any) error

// Subscription binds a listener to an event name with a priority.
// Higher priorities run first.
type Subscription struct {
	Event    string
	Priority int
	Listener Listener
}

// Subscriber exposes a set of subscriptions registered in one call.
type Subscriber interface {
	Subscriptions() []Subscription
}

// Stoppable is implemented by events that can halt propagation.
type Stoppable interface {
	IsPropagationStopped() bool
}

// Propagation can be embedded into event structs to make them Stoppable.
type Propagation struct {
	stopped bool
}

// StopPropagation prevents listeners with lower priority from running.
func (p *Propagation) StopPropagation() { p.stopped = true }

// IsPropagationStopped reports whether StopPropagation was called.
func (p *Propagation) IsPropagationStopped() bool { return p.stopped }

type registration struct {
	priority int
	seq      int
	listener Listener
}

// Dispatcher fans events out to registered listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]registration
	seq       int
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]registration)}
}

// AddListener registers listener for the named event.
func (d *Dispatcher) AddListener(name string, listener Listener, priority int) {
	if listener == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	regs := append(d.listeners[name], registration{priority: priority, seq: d.seq, listener: listener})
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	d.listeners[name] = regs
}

// AddSubscriber registers every subscription of s.
func (d *Dispatcher) AddSubscriber(s Subscriber) {
	if s == nil {
		return
	}
	for _, sub := range s.Subscriptions() {
		d.AddListener(sub.Event, sub.Listener, sub.Priority)
	}
}

// HasListeners reports whether anything listens to the named event.
func (d *Dispatcher) HasListeners(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name]) > 0
}

// Listeners returns the listeners of the named event in dispatch order.
func (d *Dispatcher) Listeners(name string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	regs := d.listeners[name]
	out := make([]Listener, len(regs))
	for i, r := range regs {
		out[i] = r.listener
	}
	return out
}

// Dispatch calls the listeners of the named event in priority order.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, evt any) error {
	stoppable, _ := evt.(Stoppable)
	for _, l := range d.Listeners(name) {
		if stoppable != nil && stoppable.IsPropagationStopped() {
			return nil
		}
		if err := l(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// SubscriberFunc adapts a plain slice of subscriptions into a Subscriber.
type SubscriberFunc func() []Subscription

// Subscriptions implements Subscriber.
func (f SubscriberFunc) Subscriptions() []Subscription { return f() }
