// Package feed delivers text messages from an upstream source.
package feed

import (
	"context"
	"errors"
	"sync"
)

// ErrStreamClosed reports that the upstream ended without a specific error.
var ErrStreamClosed = errors.New("stream closed")

// Message is a single text message from the feed.
type Message struct {
	Text string
	Lang string
}

// Source produces messages for a language filter and reports
// unrecoverable failures through the OnError handler.
type Source interface {
	// Subscribe starts delivering messages. The channel is closed after the
	// error handler fires or when ctx is done.
	Subscribe(ctx context.Context, language string) (<-chan Message, error)
	// OnError registers the handler for the terminal error of a subscription.
	// It is called at most once per subscription, from the delivering
	// goroutine after its last send, and may block until the consumer takes
	// the error or the subscription context ends.
	OnError(handler func(error))
}

type errorHook struct {
	mu      sync.Mutex
	handler func(error)
}

func (h *errorHook) set(handler func(error)) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// once returns a function that forwards only its first error to the
// handler registered at call time.
func (h *errorHook) once() func(error) {
	var o sync.Once
	return func(err error) {
		o.Do(func() {
			h.mu.Lock()
			handler := h.handler
			h.mu.Unlock()
			if handler != nil {
				handler(err)
			}
		})
	}
}
