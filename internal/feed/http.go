package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPConfig configures an HTTPStream. Credentials are passed through as-is.
type HTTPConfig struct {
	URL       string
	Token     string
	UserAgent string
	Client    *http.Client
}

// HTTPStream reads newline-delimited JSON messages of the form
// {"text": "...", "lang": "en"} from a long-lived HTTP response.
type HTTPStream struct {
	cfg  HTTPConfig
	hook errorHook
}

type streamPayload struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// NewHTTPStream creates an HTTPStream. A nil Client means a client without
// a request timeout, since the response never completes on its own.
func NewHTTPStream(cfg HTTPConfig) *HTTPStream {
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &HTTPStream{cfg: cfg}
}

// OnError implements Source.
func (s *HTTPStream) OnError(handler func(error)) {
	s.hook.set(handler)
}

// Subscribe implements Source. The language filter is sent as the
// "language" query parameter and also applied to received messages.
func (s *HTTPStream) Subscribe(ctx context.Context, language string) (<-chan Message, error) {
	req, err := s.newRequest(ctx, language)
	if err != nil {
		return nil, err
	}
	out := make(chan Message)
	fail := s.hook.once()
	go func() {
		defer close(out)
		if err := s.stream(ctx, req, language, out); err != nil && ctx.Err() == nil {
			fail(err)
		}
	}()
	return out, nil
}

func (s *HTTPStream) newRequest(ctx context.Context, language string) (*http.Request, error) {
	if s.cfg.URL == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	if language != "" {
		q := u.Query()
		q.Set("language", language)
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/x-ndjson, application/json")
	return req, nil
}

func (s *HTTPStream) stream(ctx context.Context, req *http.Request, language string, out chan<- Message) error {
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected feed status: %s", resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	for {
		var payload streamPayload
		if err := dec.Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				return ErrStreamClosed
			}
			return fmt.Errorf("failed to decode message: %w", err)
		}
		msg := Message{Text: payload.Text, Lang: payload.Lang}
		if msg.Text == "" || !matchesLanguage(msg, language) {
			continue
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}
