package markdown

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// State reports whether the capability could be made available.
type State int32

const (
	StateUnresolved State = iota
	StateAvailable
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unresolved"
	}
}

// Future completes once the capability is known to be present or absent.
// It never fails: absence is reported as a nil capability.
type Future struct {
	done  chan struct{}
	once  sync.Once
	cap   Capability
	state atomic.Int32
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(c Capability) {
	f.once.Do(func() {
		f.cap = c
		if c != nil {
			f.state.Store(int32(StateAvailable))
		} else {
			f.state.Store(int32(StateUnavailable))
		}
		close(f.done)
	})
}

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// State returns the current resolution state.
func (f *Future) State() State { return State(f.state.Load()) }

// Wait blocks until the future resolves or ctx ends. The boolean is true
// only when a capability is available.
func (f *Future) Wait(ctx context.Context) (Capability, bool) {
	select {
	case <-f.done:
		return f.cap, f.cap != nil
	case <-ctx.Done():
		return nil, false
	}
}

// Peek returns the capability without blocking.
func (f *Future) Peek() (Capability, bool) {
	select {
	case <-f.done:
		return f.cap, f.cap != nil
	default:
		return nil, false
	}
}

// Loader produces a capability, typically from a remote resource.
type Loader func(ctx context.Context) (Capability, error)

type options struct {
	styleURL string
	client   *http.Client
	loader   Loader
	timeout  time.Duration
	logger   zerolog.Logger
}

// Option configures the single negotiation of the process.
type Option func(*options)

// WithStyleURL loads the glamour style sheet from url.
func WithStyleURL(url string) Option {
	return func(o *options) { o.styleURL = url }
}

// WithHTTPClient sets the client used to fetch the style sheet.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLoader replaces the style-sheet loader.
func WithLoader(l Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithTimeout bounds the load attempt. The future resolves unavailable when it elapses.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger for load outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// StyleLoader builds a terminal capability from the built-in style, or from
// the style sheet at url when url is set.
func StyleLoader(client *http.Client, url string) Loader {
	return func(ctx context.Context) (Capability, error) {
		style := DefaultStyle()
		if url != "" {
			var err error
			style, err = FetchStyle(ctx, client, url)
			if err != nil {
				return nil, err
			}
		}
		return NewTermCapability(style), nil
	}
}

// shared is the page-session state: one installed capability and one future.
var shared struct {
	mu        sync.Mutex
	installed Capability
	future    *Future
	attempts  atomic.Int32
}

// Install registers a capability that already exists in the process. It only
// has an effect before the first call to Negotiate.
func Install(c Capability) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.future == nil {
		shared.installed = c
	}
}

// Negotiate returns the process-wide future, starting the one load attempt
// on the first call. Options are only honoured on that first call.
func Negotiate(opts ...Option) *Future {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.future != nil {
		return shared.future
	}

	o := options{
		client:  &http.Client{Timeout: 10 * time.Second},
		timeout: 15 * time.Second,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loader == nil {
		o.loader = StyleLoader(o.client, o.styleURL)
	}

	f := newFuture()
	shared.future = f

	if c := shared.installed; c != nil {
		if cc, ok := c.(configurable); ok {
			cc.Configure()
		}
		o.logger.Debug().Str("source", "installed").Msg("markdown capability available")
		f.resolve(c)
		return f
	}

	shared.attempts.Add(1)
	go load(f, o)
	return f
}

// LoadAttempts reports how many load attempts this process has made.
func LoadAttempts() int {
	return int(shared.attempts.Load())
}

// Reset forgets the process-wide state. Tests only.
func Reset() {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	shared.installed = nil
	shared.future = nil
	shared.attempts.Store(0)
}

func load(f *Future, o options) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	type result struct {
		c   Capability
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := o.loader(ctx)
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil || r.c == nil {
			o.logger.Warn().Err(r.err).Str("style_url", o.styleURL).Msg("markdown capability unavailable")
			f.resolve(nil)
			return
		}
		if cc, ok := r.c.(configurable); ok {
			cc.Configure()
		}
		o.logger.Debug().Str("style_url", o.styleURL).Msg("markdown capability available")
		f.resolve(r.c)
	case <-ctx.Done():
		o.logger.Warn().Err(ctx.Err()).Msg("markdown capability load timed out")
		f.resolve(nil)
	}
}
