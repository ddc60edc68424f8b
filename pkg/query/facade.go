// Package query is the entry point of the search core. A Facade takes
// raw input events from the presentation layer, debounces keystrokes,
// ranks the index and keeps the recent searches list, reporting every
// visible change through a Listener.
//
// State machine:
//
//	Idle    --input(non-blank)--> Typing
//	Typing  --debounce fires----> Settled
//	Settled --input(non-blank)--> Typing
//	any     --input(blank)------> Idle
//	any     --select result-----> Idle
//	any     --select recent-----> Settled
package query

import (
	"strings"
	"sync"
	"time"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/debounce"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/recent"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/search"
)

var logger = log.ForService("query")

// State of the query box.
type State int

const (
	// StateIdle: query empty, dropdown closed.
	StateIdle State = iota
	// StateTyping: query non-empty, results may be stale until the
	// debounce fires.
	StateTyping
	// StateSettled: results reflect the current query.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTyping:
		return "typing"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Option configures a Facade.
type Option func(*Facade)

// WithDelay sets the debounce delay. Non-positive values keep
// debounce.DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithLimit sets the result cap. Non-positive values keep
// search.DefaultLimit.
func WithLimit(n int) Option {
	return func(f *Facade) {
		if n > 0 {
			f.limit = n
		}
	}
}

// WithScheduler replaces the debounce scheduler.
func WithScheduler(s *debounce.Scheduler) Option {
	return func(f *Facade) {
		if s != nil {
			f.scheduler = s
		}
	}
}

// Snapshot is a consistent copy of the facade's observable state.
type Snapshot struct {
	Query     string      `json:"query"`
	Results   []core.Item `json:"results"`
	Recent    []string    `json:"recent"`
	Open      bool        `json:"open"`
	State     string      `json:"state"`
	IndexSize int         `json:"index_size"`
}

// Facade glues the index, ranking, debounce and recency together.
// Event methods are serialised by an internal lock; the debounce
// callback re-enters through the same lock. Listener calls are
// serialised by emitMu, taken before mu is released, so deliveries
// follow the order of state changes. Listeners must not call back into
// the facade.
type Facade struct {
	mu        sync.Mutex
	emitMu    sync.Mutex
	idx       *index.Index
	store     *recent.Store
	listener  Listener
	scheduler *debounce.Scheduler
	delay     time.Duration
	limit     int

	query   string
	results []core.Item
	open    bool
	state   State
	closed  bool
}

// New creates a facade in the Idle state. A nil index behaves as an empty
// one; a nil listener discards events.
func New(idx *index.Index, store *recent.Store, l Listener, opts ...Option) *Facade {
	if idx == nil {
		idx = index.Empty()
	}
	if store == nil {
		store = recent.Open(nil, "")
	}
	if l == nil {
		l = NopListener{}
	}

	f := &Facade{
		idx:       idx,
		store:     store,
		listener:  l,
		scheduler: debounce.New(),
		delay:     debounce.DefaultDelay,
		limit:     search.DefaultLimit,
		results:   []core.Item{},
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// events queues listener calls made while the lock is held so they can
// be delivered after it is released.
type events []func(Listener)

func (e *events) results(items []core.Item) {
	*e = append(*e, func(l Listener) { l.ResultsChanged(items) })
}

func (e *events) recent(queries []string) {
	*e = append(*e, func(l Listener) { l.RecentSearchesChanged(queries) })
}

func (e *events) open(open bool) {
	*e = append(*e, func(l Listener) { l.DropdownOpenChanged(open) })
}

func (e *events) navigate(target string) {
	*e = append(*e, func(l Listener) { l.Navigate(target) })
}

func (f *Facade) unlockAndEmit(evs events) {
	if len(evs) == 0 {
		f.mu.Unlock()
		return
	}
	l := f.listener
	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	f.mu.Unlock()
	for _, ev := range evs {
		ev(l)
	}
}

func (f *Facade) setOpenLocked(open bool, evs *events) {
	if f.open == open {
		return
	}
	f.open = open
	evs.open(open)
}

// resetLocked clears query and results and closes the dropdown.
func (f *Facade) resetLocked(evs *events) {
	f.scheduler.Cancel()
	f.query = ""
	if len(f.results) > 0 {
		f.results = []core.Item{}
		evs.results(f.copyResultsLocked())
	}
	f.setOpenLocked(false, evs)
	f.state = StateIdle
}

func (f *Facade) copyResultsLocked() []core.Item {
	out := make([]core.Item, len(f.results))
	copy(out, f.results)
	return out
}

func (f *Facade) searchLocked() {
	f.results = search.Search(f.idx, f.query, f.limit)
}

// OnInputChange handles a change of the query text. Blank text returns
// to Idle at once; anything else opens the dropdown and schedules a
// debounced search.
func (f *Facade) OnInputChange(text string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	if strings.TrimSpace(text) == "" {
		f.resetLocked(&evs)
		f.unlockAndEmit(evs)
		return
	}

	f.query = text
	f.state = StateTyping
	f.setOpenLocked(true, &evs)
	f.scheduler.Schedule(text, f.delay, f.settle)
	f.unlockAndEmit(evs)
}

// settle runs when the debounce fires.
func (f *Facade) settle(value string) {
	f.mu.Lock()
	if f.closed || value != f.query || f.state != StateTyping {
		f.mu.Unlock()
		return
	}

	var evs events
	f.searchLocked()
	f.state = StateSettled
	logger.Debugf("settled %q: %d results", value, len(f.results))
	evs.results(f.copyResultsLocked())
	f.unlockAndEmit(evs)
}

// OnSubmit records an explicit search (Enter key) in the recent list.
func (f *Facade) OnSubmit(text string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	if f.store.Promote(text) {
		evs.recent(f.store.List())
	}
	f.unlockAndEmit(evs)
}

// OnSelectResult records the item's title in the recent list, closes the
// dropdown and asks the navigation collaborator to open the item's target.
func (f *Facade) OnSelectResult(item core.Item) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	if f.store.Promote(item.Title) {
		evs.recent(f.store.List())
	}
	f.resetLocked(&evs)
	if item.HasTarget() {
		evs.navigate(item.Target)
	}
	f.unlockAndEmit(evs)
}

// OnSelectRecent runs a recent query right away, bypassing the debounce.
func (f *Facade) OnSelectRecent(text string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	if strings.TrimSpace(text) == "" {
		f.resetLocked(&evs)
		f.unlockAndEmit(evs)
		return
	}

	f.scheduler.Cancel()
	f.query = text
	f.searchLocked()
	f.state = StateSettled
	evs.results(f.copyResultsLocked())
	f.setOpenLocked(true, &evs)
	f.unlockAndEmit(evs)
}

// OnClearRecent empties the recent list.
func (f *Facade) OnClearRecent() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	f.store.Clear()
	evs.recent([]string{})
	f.unlockAndEmit(evs)
}

// RebuildIndex builds a new index from sources and swaps it in.
func (f *Facade) RebuildIndex(sources [][]core.Item) {
	f.SetIndex(index.Build(sources))
}

// SetIndex swaps in a prebuilt index. Settled results are recomputed
// against it; a pending debounce will pick it up when it fires.
func (f *Facade) SetIndex(idx *index.Index) {
	if idx == nil {
		idx = index.Empty()
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	var evs events
	f.idx = idx
	logger.Debugf("index swapped: %d items", idx.Len())
	if f.state == StateSettled {
		f.searchLocked()
		evs.results(f.copyResultsLocked())
	}
	f.unlockAndEmit(evs)
}

// Close cancels any pending debounce. Later events are ignored.
func (f *Facade) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.scheduler.Cancel()
}

func (f *Facade) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Results returns a copy of the current results.
func (f *Facade) Results() []core.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyResultsLocked()
}

func (f *Facade) RecentSearches() []string {
	return f.store.List()
}

func (f *Facade) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Index returns the index currently searched.
func (f *Facade) Index() *index.Index {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idx
}

func (f *Facade) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Query:     f.query,
		Results:   f.copyResultsLocked(),
		Recent:    f.store.List(),
		Open:      f.open,
		State:     f.state.String(),
		IndexSize: f.idx.Len(),
	}
}
