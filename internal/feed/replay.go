package feed

import "context"

// Replay delivers a fixed list of messages. After the last one it reports
// Err (ErrStreamClosed when nil), unless Hold keeps the stream open until
// the subscription context ends.
type Replay struct {
	Messages []Message
	Err      error
	Hold     bool

	hook errorHook
}

// NewReplay builds a Replay from plain texts.
func NewReplay(texts ...string) *Replay {
	msgs := make([]Message, len(texts))
	for i, text := range texts {
		msgs[i] = Message{Text: text}
	}
	return &Replay{Messages: msgs}
}

// OnError implements Source.
func (r *Replay) OnError(handler func(error)) {
	r.hook.set(handler)
}

// Subscribe implements Source. Messages with a Lang different from a
// non-empty language filter are skipped.
func (r *Replay) Subscribe(ctx context.Context, language string) (<-chan Message, error) {
	out := make(chan Message)
	fail := r.hook.once()
	go func() {
		defer close(out)
		for _, msg := range r.Messages {
			if !matchesLanguage(msg, language) {
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
		if r.Hold {
			<-ctx.Done()
			return
		}
		err := r.Err
		if err == nil {
			err = ErrStreamClosed
		}
		fail(err)
	}()
	return out, nil
}

func matchesLanguage(msg Message, language string) bool {
	return language == "" || msg.Lang == "" || msg.Lang == language
}
