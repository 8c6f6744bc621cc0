package plugin

import "slices"

// EventHandler handles host events.
// Handlers must be non-blocking and must not call back into the Host.
// Panics in handlers are recovered.
type EventHandler func(event Event)

// Event is emitted by a Host as plugins move through their lifecycle.
type Event struct {
	Type   EventType
	Plugin string
	Dir    string
	Error  error
}

// EventType is the type of host event.
type EventType int

const (
	// EventRegistered is emitted when a plugin joins the collection.
	EventRegistered EventType = iota
	// EventLoadFailed is emitted when a package fails to load.
	EventLoadFailed
	// EventInitialized is emitted after a plugin's initializer succeeds.
	EventInitialized
	// EventInitFailed is emitted when an initializer fails.
	EventInitFailed
	// EventRunning is emitted when the host enters StateRunning.
	EventRunning
	// EventIgnored is emitted when a lifecycle call is a no-op.
	EventIgnored
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventLoadFailed:
		return "load-failed"
	case EventInitialized:
		return "initialized"
	case EventInitFailed:
		return "init-failed"
	case EventRunning:
		return "running"
	case EventIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// subscription pairs a handler with the id its unsubscribe func removes.
type subscription struct {
	id      uint64
	handler EventHandler
}

// Subscribe registers a handler for host events.
// Returns a function that removes the handler. Calling it more than once is
// harmless.
func (h *Host) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextHandler++
	id := h.nextHandler
	h.handlers = append(h.handlers, subscription{id: id, handler: handler})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.handlers = slices.DeleteFunc(h.handlers, func(s subscription) bool {
			return s.id == id
		})
	}
}

// emit delivers events outside the host lock.
func (h *Host) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	h.mu.RLock()
	subs := slices.Clone(h.handlers)
	h.mu.RUnlock()

	for _, event := range events {
		for _, sub := range subs {
			func() {
				defer func() {
					_ = recover()
				}()
				sub.handler(event)
			}()
		}
	}
}

// handlerCount returns the number of live subscriptions.
func (h *Host) handlerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}
