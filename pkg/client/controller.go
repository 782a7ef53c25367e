package client

import (
	"context"
	"sync"
	"time"

	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/search"
)

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. Controllers only use it through this interface
// so tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Searcher fetches results for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.ResultItem, error)
}

// Focuser gives input focus to the search box.
type Focuser interface {
	Focus()
}

// Navigator opens a result link.
type Navigator interface {
	Navigate(url string)
}

// FocusFunc adapts a function to Focuser.
type FocusFunc func()

func (f FocusFunc) Focus() { f() }

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(url string)

func (f NavigateFunc) Navigate(url string) { f(url) }

// RealScheduler schedules with the wall clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Deps are the collaborators a Controller drives. Only Searcher is
// required.
type Deps struct {
	Scheduler Scheduler
	Searcher  Searcher
	Focuser   Focuser
	Navigator Navigator

	// OnChange is called with the new state after every event.
	OnChange func(State)
}

// Controller owns one overlay State and executes the effects of its
// transitions. Events are handled one at a time; timer callbacks and
// HTTP responses re-enter through Dispatch.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	state  State
	deps   Deps
	logger *log.Logger

	// At most one debounce timer and one request are live.
	debounce    Timer
	cancelFetch context.CancelFunc
	inflight    sync.WaitGroup
}

// NewController creates a closed controller.
func NewController(cfg Config, deps Deps) *Controller {
	if deps.Scheduler == nil {
		deps.Scheduler = RealScheduler{}
	}
	if deps.Focuser == nil {
		deps.Focuser = FocusFunc(func() {})
	}
	if deps.Navigator == nil {
		deps.Navigator = NavigateFunc(func(string) {})
	}
	return &Controller{
		cfg:    cfg,
		state:  State{Phase: Closed, Selected: -1},
		deps:   deps,
		logger: log.ForService("client"),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Results = cloneResults(s.Results)
	return s
}

// Dispatch feeds ev to the state machine and performs the resulting effects.
func (c *Controller) Dispatch(ev Event) {
	c.mu.Lock()
	next, effects := c.cfg.Reduce(c.state, ev)
	c.state = next

	var after []func()
	for _, eff := range effects {
		if f := c.perform(eff); f != nil {
			after = append(after, f)
		}
	}

	snapshot := next
	snapshot.Results = cloneResults(next.Results)
	c.mu.Unlock()

	// Callbacks run unlocked so they may read State.
	for _, f := range after {
		f()
	}
	if c.deps.OnChange != nil {
		c.deps.OnChange(snapshot)
	}
}

func (c *Controller) Open()         { c.Dispatch(Open{}) }
func (c *Controller) Close()        { c.Dispatch(Close{}) }
func (c *Controller) Type(s string) { c.Dispatch(Input{Text: s}) }
func (c *Controller) Down()         { c.Dispatch(KeyDown{}) }
func (c *Controller) Up()           { c.Dispatch(KeyUp{}) }
func (c *Controller) Enter()        { c.Dispatch(KeyEnter{}) }

// Wait blocks until no request is in flight.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// perform runs an effect with c.mu held. Work that calls out of the
// package is returned to run after unlocking.
func (c *Controller) perform(eff Effect) func() {
	switch eff := eff.(type) {
	case Focus:
		if !eff.Deferred {
			return c.deps.Focuser.Focus
		}
		c.deps.Scheduler.AfterFunc(eff.Delay, c.deps.Focuser.Focus)

	case StartDebounce:
		c.stopDebounce()
		gen := eff.Gen
		c.debounce = c.deps.Scheduler.AfterFunc(eff.Delay, func() {
			c.Dispatch(DebounceElapsed{Gen: gen})
		})

	case CancelDebounce:
		c.stopDebounce()

	case Fetch:
		c.stopFetch()
		c.startFetch(eff)

	case CancelFetch:
		c.stopFetch()

	case Navigate:
		url := eff.URL
		return func() { c.deps.Navigator.Navigate(url) }
	}
	return nil
}

func (c *Controller) stopDebounce() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

func (c *Controller) stopFetch() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

func (c *Controller) startFetch(f Fetch) {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		items, err := c.deps.Searcher.Search(ctx, f.Query)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warnf("search for %q failed: %v", f.Query, err)
			}
			c.Dispatch(Failure{Gen: f.Gen, Err: err})
			return
		}
		c.Dispatch(Response{Gen: f.Gen, Items: items})
	}()
}
