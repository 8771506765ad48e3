package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Lines reads one message per non-empty line.
type Lines struct {
	r    io.Reader
	hook errorHook
}

// NewLines returns a Source over r. End of input is reported as ErrStreamClosed.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: r}
}

// OnError implements Source.
func (l *Lines) OnError(handler func(error)) {
	l.hook.set(handler)
}

// Subscribe implements Source. The language filter does not apply to
// plain text input and is ignored.
func (l *Lines) Subscribe(ctx context.Context, _ string) (<-chan Message, error) {
	if l.r == nil {
		return nil, fmt.Errorf("line source has no reader")
	}
	out := make(chan Message)
	fail := l.hook.once()
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(l.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			select {
			case out <- Message{Text: text}:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err := scanner.Err(); err != nil {
			fail(fmt.Errorf("failed to read input: %w", err))
			return
		}
		fail(ErrStreamClosed)
	}()
	return out, nil
}
