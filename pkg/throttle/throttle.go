// Package throttle bounds the rate of outbound calls to an upstream service.
//
// A Throttle keeps a sliding-window log of task start times. At most
// maxRequests tasks start within any trailing window, tasks start strictly in
// submission order, and consecutive starts are separated by a fixed spacing
// even while the window has room. A single dispatcher goroutine owns the
// queue while it is non-empty and exits once the queue drains.
package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/watchsync/pkg/constants"
)

// Throttle is a FIFO sliding-window rate limiter. The zero value is not usable;
// create one with New. A nil *Throttle runs tasks immediately.
type Throttle struct {
	mu      sync.Mutex
	queue   []*ticket
	starts  []time.Time
	last    time.Time
	running bool

	submitted int
	started   int

	name    string
	max     int
	window  time.Duration
	spacing time.Duration
	buffer  time.Duration
}

// A ticket is granted by the dispatcher (ready) and acknowledged by its
// caller (started). The next ticket is not granted before the acknowledgement,
// so starts happen in queue order.
type ticket struct {
	ready    chan struct{}
	started  chan struct{}
	granted  bool
	canceled bool
}

// Option configures a Throttle.
type Option func(*Throttle)

// WithSpacing sets the fixed delay between consecutive task starts.
func WithSpacing(d time.Duration) Option {
	return func(t *Throttle) {
		t.spacing = d
	}
}

// WithBuffer sets the slack added to every computed window wait.
func WithBuffer(d time.Duration) Option {
	return func(t *Throttle) {
		t.buffer = d
	}
}

// WithName labels the throttle for logs and stats.
func WithName(name string) Option {
	return func(t *Throttle) {
		t.name = name
	}
}

// New creates a throttle allowing maxRequests task starts per window.
// A non-positive maxRequests disables the window check and keeps only the spacing.
func New(maxRequests int, window time.Duration, opts ...Option) *Throttle {
	t := &Throttle{
		max:     maxRequests,
		window:  window,
		spacing: constants.ThrottleSpacing,
		buffer:  constants.ThrottleBuffer,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schedule waits for the task's turn and runs fn on the caller's goroutine.
// The error returned by fn is passed through unchanged. If ctx ends while the
// task is still queued, fn is not run and the context error is returned.
func (t *Throttle) Schedule(ctx context.Context, fn func(context.Context) error) error {
	if t == nil {
		return fn(ctx)
	}

	tk := &ticket{ready: make(chan struct{}), started: make(chan struct{})}

	t.mu.Lock()
	t.queue = append(t.queue, tk)
	t.submitted++
	if !t.running {
		t.running = true
		go t.dispatch()
	}
	t.mu.Unlock()

	select {
	case <-tk.ready:
		t.start(tk)
		return fn(ctx)
	case <-ctx.Done():
		t.mu.Lock()
		granted := tk.granted
		if !granted {
			tk.canceled = true
		}
		t.mu.Unlock()
		// A ticket granted concurrently with cancellation has spent its slot.
		if granted {
			t.start(tk)
		}
		return ctx.Err()
	}
}

// start records the task start and releases the dispatcher.
func (t *Throttle) start(tk *ticket) {
	t.mu.Lock()
	now := time.Now()
	t.starts = append(t.starts, now)
	t.last = now
	t.started++
	t.mu.Unlock()
	close(tk.started)
}

// Do schedules fn on t and returns its result.
func Do[T any](ctx context.Context, t *Throttle, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := t.Schedule(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// dispatch grants queued tickets in order until the queue is empty.
func (t *Throttle) dispatch() {
	for {
		t.mu.Lock()
		for len(t.queue) > 0 && t.queue[0].canceled {
			t.queue = t.queue[1:]
		}
		if len(t.queue) == 0 {
			t.running = false
			t.mu.Unlock()
			return
		}

		wait := t.waitLocked(time.Now())
		if wait <= 0 {
			tk := t.queue[0]
			t.queue = t.queue[1:]
			tk.granted = true
			close(tk.ready)
			t.mu.Unlock()
			<-tk.started
			continue
		}
		t.mu.Unlock()

		time.Sleep(wait)
	}
}

// waitLocked prunes the window and returns how long the head ticket must wait.
func (t *Throttle) waitLocked(now time.Time) time.Duration {
	t.pruneLocked(now)

	if t.max > 0 && len(t.starts) >= t.max {
		return t.window - now.Sub(t.starts[0]) + t.buffer
	}
	if !t.last.IsZero() && t.spacing > 0 {
		if d := t.spacing - now.Sub(t.last); d > 0 {
			return d
		}
	}
	return 0
}

func (t *Throttle) pruneLocked(now time.Time) {
	i := 0
	for i < len(t.starts) && now.Sub(t.starts[i]) >= t.window {
		i++
	}
	if i > 0 {
		t.starts = append(t.starts[:0], t.starts[i:]...)
	}
}

// Stats is a point-in-time view of a throttle.
type Stats struct {
	Name        string        `json:"name" yaml:"name"`
	Pending     int           `json:"pending" yaml:"pending"`
	InWindow    int           `json:"in_window" yaml:"in_window"`
	Submitted   int           `json:"submitted" yaml:"submitted"`
	Started     int           `json:"started" yaml:"started"`
	MaxRequests int           `json:"max_requests" yaml:"max_requests"`
	Window      time.Duration `json:"window" yaml:"window"`
}

// Pending returns the number of queued tasks that have not started.
func (t *Throttle) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, tk := range t.queue {
		if !tk.canceled {
			n++
		}
	}
	return n
}

// InWindow returns the number of task starts inside the trailing window.
func (t *Throttle) InWindow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(time.Now())
	return len(t.starts)
}

// Stats returns a snapshot of the throttle state.
func (t *Throttle) Stats() Stats {
	pending, inWindow := t.Pending(), t.InWindow()
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Name:        t.name,
		Pending:     pending,
		InWindow:    inWindow,
		Submitted:   t.submitted,
		Started:     t.started,
		MaxRequests: t.max,
		Window:      t.window,
	}
}
