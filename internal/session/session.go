// Package session runs the message ingest loop of a counting session.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/verte-zerg/tcounter/internal/counter"
	"github.com/verte-zerg/tcounter/internal/feed"
	"github.com/verte-zerg/tcounter/internal/model"
	"github.com/verte-zerg/tcounter/internal/shutdown"
	"github.com/verte-zerg/tcounter/internal/snapshot"
	"github.com/verte-zerg/tcounter/internal/tokenize"
)

const defaultObserveEvery = 250 * time.Millisecond

// Progress is a point-in-time view of a running session.
type Progress struct {
	Messages int
	Tokens   int
	Distinct int
	Top      []model.WordCount
	Deadline time.Time
	Done     bool
}

// Result describes how a session ended.
type Result struct {
	State     shutdown.State
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time
	Messages  int
	Tokens    int
	Distinct  int
	Top       []model.WordCount
	FeedErr   error
	SaveErr   error
}

// Session owns the frequency table for its lifetime. Only the Run
// goroutine touches the table; the feed error handler, signals and the
// coordinator timer communicate through channels and flags.
type Session struct {
	cfg    model.Config
	src    feed.Source
	store  *snapshot.Store
	coord  *shutdown.Coordinator
	tok    *tokenize.Tokenizer
	logger *slog.Logger
	now    func() time.Time

	observer     func(Progress)
	observeEvery time.Duration
	lastObserved time.Time

	table   *counter.Table
	feedErr chan error
	res     Result
}

// New wires a session. A nil logger discards log output.
func New(cfg model.Config, src feed.Source, store *snapshot.Store, coord *shutdown.Coordinator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		cfg:          cfg,
		src:          src,
		store:        store,
		coord:        coord,
		tok:          tokenize.New(cfg.StopWords),
		logger:       logger,
		now:          time.Now,
		observeEvery: defaultObserveEvery,
		feedErr:      make(chan error),
	}
}

// SetClock replaces the time source used for the deadline check.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// SetObserver registers fn to receive progress at most once per every,
// plus once when the session ends. fn runs on the loop goroutine.
func (s *Session) SetObserver(fn func(Progress), every time.Duration) {
	s.observer = fn
	if every > 0 {
		s.observeEvery = every
	}
}

// Run loads the snapshot, consumes the feed until the coordinator asks
// for shutdown, saves once and returns.
func (s *Session) Run(ctx context.Context) Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.table = s.store.Load()
	s.res = Result{StartedAt: s.now()}
	s.coord.Start(s.res.StartedAt)
	if s.cfg.IdleDeadline {
		s.coord.Arm(ctx)
	}

	// The handler returns only once the loop has taken the error, so every
	// message received before that was sent before the error.
	s.src.OnError(func(err error) {
		select {
		case s.feedErr <- err:
		case <-ctx.Done():
		}
	})
	msgs, err := s.src.Subscribe(ctx, s.cfg.Language)
	if err != nil {
		return s.failFeed(err)
	}

	for {
		select {
		case err := <-s.feedErr:
			return s.failFeed(err)
		default:
		}

		select {
		case err := <-s.feedErr:
			return s.failFeed(err)
		case msg, ok := <-msgs:
			if !ok {
				return s.streamEnded(ctx)
			}
			s.handle(msg)
		case <-s.coord.Wake():
		case <-ctx.Done():
			s.coord.Schedule(shutdown.ReasonCanceled)
		}

		if s.coord.SaveScheduled() {
			s.announce()
			s.save()
			return s.terminate()
		}
		if s.coord.ShutdownScheduled() {
			return s.terminate()
		}
	}
}

func (s *Session) handle(msg feed.Message) {
	if s.coord.CheckDeadline(s.now()) {
		return
	}
	s.logger.Info(msg.Text, "tag", "processing-tweet")
	tokens := s.tok.Tokens(msg.Text)
	s.table.Ingest(tokens)
	s.res.Messages++
	s.res.Tokens += len(tokens)
	s.observe(false)
}

func (s *Session) streamEnded(ctx context.Context) Result {
	select {
	case err := <-s.feedErr:
		return s.failFeed(err)
	default:
	}
	if ctx.Err() != nil {
		s.coord.Schedule(shutdown.ReasonCanceled)
		if s.coord.SaveScheduled() {
			s.announce()
			s.save()
		}
		return s.terminate()
	}
	return s.failFeed(feed.ErrStreamClosed)
}

// failFeed saves and shuts down right away: no further messages will come.
func (s *Session) failFeed(err error) Result {
	s.res.FeedErr = err
	s.coord.Schedule(shutdown.ReasonFeedError)
	if errors.Is(err, feed.ErrStreamClosed) {
		s.logger.Warn(err.Error(), "tag", "client-error")
	} else {
		s.logger.Error(err.Error(), "tag", "client-error")
	}
	if s.coord.SaveScheduled() {
		s.logger.Info("saving data...", "tag", "client-error")
		s.save()
	}
	s.logger.Info("shutting down...", "tag", "client-error")
	return s.terminate()
}

func (s *Session) announce() {
	switch s.coord.Reason() {
	case shutdown.ReasonSignal:
		s.logger.Info("scheduling process for shutdown", "tag", "handling-signal")
	case shutdown.ReasonDeadline:
		s.logger.Info("session window elapsed", "tag", "shutting-down", "deadline", s.coord.Deadline())
	default:
		s.logger.Info("shutdown requested", "tag", "shutting-down", "reason", s.coord.Reason())
	}
}

func (s *Session) save() {
	if err := s.store.Save(s.table); err != nil {
		s.res.SaveErr = err
	}
	s.coord.MarkSaved()
}

func (s *Session) terminate() Result {
	s.coord.MarkTerminated()
	s.logger.Info("bye.. bye..", "tag", "shutting-down")
	s.res.State = s.coord.State()
	s.res.Reason = s.coord.Reason()
	s.res.EndedAt = s.now()
	s.res.Distinct = s.table.Len()
	s.res.Top = s.table.TopK(s.topN())
	s.observe(true)
	return s.res
}

func (s *Session) observe(done bool) {
	if s.observer == nil {
		return
	}
	now := time.Now()
	if !done && now.Sub(s.lastObserved) < s.observeEvery {
		return
	}
	s.lastObserved = now
	s.observer(Progress{
		Messages: s.res.Messages,
		Tokens:   s.res.Tokens,
		Distinct: s.table.Len(),
		Top:      s.table.TopK(s.topN()),
		Deadline: s.coord.Deadline(),
		Done:     done,
	})
}

func (s *Session) topN() int {
	if s.cfg.Top > 0 {
		return s.cfg.Top
	}
	return 10
}
