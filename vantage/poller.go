package vantage

import (
	"context"
	"sync"
	"time"
)

// Poll session states.
const (
	PollProcessing = "processing"
	PollCompleted  = "completed"
	PollFailed     = "failed"
	PollTimedOut   = "timed_out"
	PollStopped    = "stopped"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 60
)

// Poller drives an analysis to its terminal state by fetching it on a
// fixed interval and caching each snapshot in the store. At most one
// session runs per analysis ID; starting a new session supersedes the
// old one.
type Poller struct {
	Client *Client
	Store  *Store

	// Interval between fetches. Defaults to 3 seconds.
	Interval time.Duration
	// MaxAttempts bounds the number of fetches before the session
	// records a PollingTimeoutError. Defaults to 60.
	MaxAttempts int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewPoller returns a poller with default interval and attempt budget.
func NewPoller(client *Client, store *Store) *Poller {
	return &Poller{
		Client:      client,
		Store:       store,
		Interval:    defaultPollInterval,
		MaxAttempts: defaultMaxAttempts,
	}
}

// Session tracks one polling loop. Done is closed when the loop exits;
// State and Err describe how it ended.
type Session struct {
	AnalysisID string

	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state string
	err   error
}

// Done is closed when the session's loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the session's current state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the session, if any. A timeout is
// reported as *PollingTimeoutError; it is recorded here rather than
// panicking or aborting the caller.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) finish(state string, err error) {
	s.mu.Lock()
	s.state = state
	s.err = err
	s.mu.Unlock()
	close(s.done)
}

// Start begins polling the analysis. Any live session for the same ID
// is cancelled first, so at most one fetch loop per analysis is ever
// in flight.
func (p *Poller) Start(ctx context.Context, id string) *Session {
	p.mu.Lock()
	if p.sessions == nil {
		p.sessions = map[string]*Session{}
	}
	if prev, ok := p.sessions[id]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	sess := &Session{
		AnalysisID: id,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      PollProcessing,
	}
	p.sessions[id] = sess
	p.mu.Unlock()

	go p.run(ctx, sess)
	return sess
}

// Stop cancels the live session for the analysis, if any.
func (p *Poller) Stop(id string) {
	p.mu.Lock()
	sess, ok := p.sessions[id]
	p.mu.Unlock()
	if ok {
		sess.cancel()
	}
}

func (p *Poller) run(ctx context.Context, sess *Session) {
	defer sess.cancel()
	defer p.release(sess)

	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		a, err := p.Client.GetAnalysis(ctx, sess.AnalysisID)
		if ctx.Err() != nil {
			// Superseded or cancelled mid-fetch; leave the store as the
			// previous snapshot left it.
			sess.finish(PollStopped, nil)
			return
		}
		if err != nil {
			// A fetch failure ends the session; the last good snapshot
			// stays cached for the caller to inspect.
			sess.finish(PollStopped, err)
			return
		}

		p.Store.Put(a)

		switch a.Status {
		case StatusCompleted:
			sess.finish(PollCompleted, nil)
			return
		case StatusFailed:
			sess.finish(PollFailed, nil)
			return
		}

		if attempt >= maxAttempts {
			sess.finish(PollTimedOut, &PollingTimeoutError{ID: sess.AnalysisID, Attempts: attempt})
			return
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			sess.finish(PollStopped, nil)
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) release(sess *Session) {
	p.mu.Lock()
	if p.sessions[sess.AnalysisID] == sess {
		delete(p.sessions, sess.AnalysisID)
	}
	p.mu.Unlock()
}
