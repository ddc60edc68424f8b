package query

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/debounce"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/recent"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

type event struct {
	kind   string
	titles []string
	recent []string
	open   bool
	target string
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ResultsChanged(items []core.Item) {
	titles := []string{}
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	r.add(event{kind: "results", titles: titles})
}

func (r *recorder) RecentSearchesChanged(queries []string) {
	r.add(event{kind: "recent", recent: queries})
}

func (r *recorder) DropdownOpenChanged(open bool) {
	r.add(event{kind: "open", open: open})
}

func (r *recorder) Navigate(target string) {
	r.add(event{kind: "navigate", target: target})
}

func (r *recorder) all() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) kinds() []string {
	var out []string
	for _, e := range r.all() {
		out = append(out, e.kind)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func testIndex() *index.Index {
	return index.Build([][]core.Item{
		{{ID: "receipt", Title: "Receipt Settings", Type: core.TypeSetting, Target: "/settings/receipt"}},
		{{ID: "products", Title: "Products", Type: core.TypePage, Target: "/products"}},
		{{ID: "1", Title: "Espresso Blend", Subtitle: "Coffee - $24.99", Type: core.TypeProduct, Target: "/products/1"}},
	})
}

// newTestFacade uses a long debounce delay; tests settle explicitly.
func newTestFacade(t *testing.T) (*Facade, *recorder, *recent.Store) {
	t.Helper()
	rec := &recorder{}
	store := recent.Open(storage.NewMemoryKV(), recent.DefaultKey)
	f := New(testIndex(), store, rec, WithDelay(time.Hour))
	t.Cleanup(f.Close)
	return f, rec, store
}

func titlesOf(items []core.Item) []string {
	out := []string{}
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestInitialState(t *testing.T) {
	f, _, _ := newTestFacade(t)

	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, "", f.Query())
	assert.Empty(t, f.Results())
	assert.False(t, f.IsOpen())
	assert.Equal(t, 3, f.Index().Len())
}

func TestTypingThenSettle(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.OnInputChange("e")
	assert.Equal(t, StateTyping, f.State())
	assert.True(t, f.IsOpen())
	assert.Empty(t, f.Results())
	assert.Equal(t, []string{"open"}, rec.kinds())

	f.settle("e")
	assert.Equal(t, StateSettled, f.State())
	assert.Equal(t, []string{"Receipt Settings", "Products", "Espresso Blend"}, titlesOf(f.Results()))
	assert.Equal(t, []string{"open", "results"}, rec.kinds())
}

func TestStaleSettleIsIgnored(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.OnInputChange("p")
	f.OnInputChange("pro")
	f.settle("p")

	assert.Equal(t, StateTyping, f.State())
	assert.Empty(t, f.Results())

	f.settle("pro")
	assert.Equal(t, []string{"Products"}, titlesOf(f.Results()))
	assert.Equal(t, []string{"open", "results"}, rec.kinds())
}

func TestDebounceCoalescesKeystrokes(t *testing.T) {
	rec := &recorder{}
	f := New(testIndex(), nil, rec, WithDelay(20*time.Millisecond))
	defer f.Close()

	f.OnInputChange("e")
	f.OnInputChange("es")
	f.OnInputChange("esp")

	require.Eventually(t, func() bool {
		return f.State() == StateSettled
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	var results []event
	for _, e := range rec.all() {
		if e.kind == "results" {
			results = append(results, e)
		}
	}
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Espresso Blend"}, results[0].titles)
}

func TestBlankInputReturnsToIdle(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.OnInputChange("pro")
	f.settle("pro")
	rec.reset()

	f.OnInputChange("   ")
	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, "", f.Query())
	assert.Empty(t, f.Results())
	assert.False(t, f.IsOpen())
	assert.Equal(t, []string{"results", "open"}, rec.kinds())
}

func TestBlankInputCancelsPendingDebounce(t *testing.T) {
	rec := &recorder{}
	f := New(testIndex(), nil, rec, WithDelay(20*time.Millisecond))
	defer f.Close()

	f.OnInputChange("pro")
	f.OnInputChange("")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, []string{"open", "open"}, rec.kinds())
}

func TestSubmitPromotes(t *testing.T) {
	f, rec, store := newTestFacade(t)

	f.OnInputChange("latte")
	rec.reset()
	f.OnSubmit("latte")

	assert.Equal(t, []string{"latte"}, store.List())
	assert.Equal(t, StateTyping, f.State())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, []string{"latte"}, rec.all()[0].recent)

	rec.reset()
	f.OnSubmit("  ")
	assert.Empty(t, rec.all())
}

func TestSelectResult(t *testing.T) {
	f, rec, store := newTestFacade(t)

	f.OnInputChange("esp")
	f.settle("esp")
	item := f.Results()[0]
	rec.reset()

	f.OnSelectResult(item)

	assert.Equal(t, StateIdle, f.State())
	assert.False(t, f.IsOpen())
	assert.Equal(t, "", f.Query())
	assert.Empty(t, f.Results())
	assert.Equal(t, []string{"Espresso Blend"}, store.List())

	evs := rec.all()
	assert.Equal(t, []string{"recent", "results", "open", "navigate"}, rec.kinds())
	assert.Equal(t, "/products/1", evs[3].target)
}

func TestSelectResultWithoutTarget(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.OnSelectResult(core.Item{ID: "x", Title: "No route", Type: core.TypeSetting})
	assert.Equal(t, []string{"recent"}, rec.kinds())
}

func TestSelectRecentSearchesSynchronously(t *testing.T) {
	f, rec, store := newTestFacade(t)
	store.Promote("pro")

	f.OnSelectRecent("pro")

	assert.Equal(t, StateSettled, f.State())
	assert.True(t, f.IsOpen())
	assert.Equal(t, "pro", f.Query())
	assert.Equal(t, []string{"Products"}, titlesOf(f.Results()))
	assert.Equal(t, []string{"results", "open"}, rec.kinds())
	assert.Equal(t, []string{"pro"}, store.List())
}

func TestSelectRecentCancelsPendingDebounce(t *testing.T) {
	rec := &recorder{}
	f := New(testIndex(), nil, rec, WithDelay(20*time.Millisecond))
	defer f.Close()

	f.OnInputChange("receipt")
	f.OnSelectRecent("pro")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"Products"}, titlesOf(f.Results()))
	assert.Equal(t, []string{"open", "results"}, rec.kinds())
}

func TestClearRecent(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := recent.Open(kv, recent.DefaultKey)
	rec := &recorder{}
	f := New(testIndex(), store, rec)
	defer f.Close()

	f.OnSubmit("a")
	f.OnSubmit("b")
	rec.reset()

	f.OnClearRecent()
	assert.Empty(t, f.RecentSearches())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, []string{}, rec.all()[0].recent)

	raw, err := kv.Get(recent.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestRebuildIndexRecomputesSettledResults(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.OnInputChange("blend")
	f.settle("blend")
	rec.reset()

	f.RebuildIndex([][]core.Item{
		{{ID: "2", Title: "House Blend", Type: core.TypeProduct}},
		{{ID: "3", Title: "Blender", Type: core.TypeSetting}},
	})

	assert.Equal(t, []string{"Blender", "House Blend"}, titlesOf(f.Results()))
	assert.Equal(t, []string{"results"}, rec.kinds())
	assert.Equal(t, 2, f.Index().Len())
}

func TestSetIndexWhileIdleEmitsNothing(t *testing.T) {
	f, rec, _ := newTestFacade(t)

	f.SetIndex(nil)
	assert.Equal(t, 0, f.Index().Len())
	assert.Empty(t, rec.all())
}

func TestCloseStopsEverything(t *testing.T) {
	rec := &recorder{}
	f := New(testIndex(), nil, rec, WithDelay(10*time.Millisecond))

	f.OnInputChange("pro")
	f.Close()
	time.Sleep(40 * time.Millisecond)

	f.OnInputChange("e")
	f.OnSubmit("x")
	f.OnClearRecent()

	assert.Equal(t, StateTyping, f.State())
	assert.Empty(t, f.Results())
	assert.Equal(t, []string{"open"}, rec.kinds())
	assert.Empty(t, f.RecentSearches())
}

func TestWithLimitAndScheduler(t *testing.T) {
	var items []core.Item
	for _, title := range []string{"Cup A", "Cup B", "Cup C"} {
		items = append(items, core.Item{ID: title, Title: title, Type: core.TypeProduct})
	}
	sched := debounce.New()
	f := New(index.Build([][]core.Item{items}), nil, nil, WithLimit(2), WithScheduler(sched), WithDelay(time.Hour))
	defer f.Close()

	f.OnInputChange("cup")
	assert.True(t, sched.Pending())
	f.settle("cup")
	assert.Len(t, f.Results(), 2)
}

func TestSnapshotJSON(t *testing.T) {
	f, _, _ := newTestFacade(t)
	f.OnSubmit("pro")
	f.OnSelectRecent("pro")

	data, err := json.Marshal(f.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pro", decoded["query"])
	assert.Equal(t, "settled", decoded["state"])
	assert.Equal(t, true, decoded["open"])
	assert.Equal(t, float64(3), decoded["index_size"])
	assert.Equal(t, []any{"pro"}, decoded["recent"])
	assert.Len(t, decoded["results"], 1)
}

func TestListenersFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := New(testIndex(), nil, Listeners{a, b, NopListener{}})
	defer f.Close()

	f.OnSelectRecent("pro")
	assert.Equal(t, a.kinds(), b.kinds())
	assert.Equal(t, []string{"results", "open"}, a.kinds())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "typing", StateTyping.String())
	assert.Equal(t, "settled", StateSettled.String())
	assert.Equal(t, "unknown", State(42).String())
}

// gatedListener blocks inside the first non-empty ResultsChanged until
// release is closed, and remembers the last results it saw.
type gatedListener struct {
	NopListener
	entered chan struct{}
	release chan struct{}

	mu   sync.Mutex
	once sync.Once
	last []string
}

func (g *gatedListener) ResultsChanged(items []core.Item) {
	if len(items) > 0 {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = titlesOf(items)
}

func (g *gatedListener) lastResults() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func TestClearingWhileSettleDeliversKeepsOrder(t *testing.T) {
	g := &gatedListener{entered: make(chan struct{}), release: make(chan struct{})}
	f := New(testIndex(), nil, g, WithDelay(time.Millisecond))
	t.Cleanup(f.Close)

	f.OnInputChange("e")
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never delivered results")
	}

	cleared := make(chan struct{})
	go func() {
		f.OnInputChange("")
		close(cleared)
	}()

	// Give the blank input time to change state before the settle
	// delivery finishes.
	time.Sleep(20 * time.Millisecond)
	close(g.release)

	select {
	case <-cleared:
	case <-time.After(2 * time.Second):
		t.Fatal("blank input never returned")
	}

	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Results())
	assert.Equal(t, []string{}, g.lastResults())
}
