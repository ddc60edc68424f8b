package query

import "github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"

// Listener receives the facade's outgoing events. Calls happen outside
// the facade lock, one at a time, in the order the state changed.
// Implementations must not block for long, since debounce callbacks
// deliver events from a timer goroutine, and must not call back into the
// facade.
type Listener interface {
	ResultsChanged(items []core.Item)
	RecentSearchesChanged(queries []string)
	DropdownOpenChanged(open bool)
	Navigate(target string)
}

// Listeners fans every event out to each listener in order.
type Listeners []Listener

func (ls Listeners) ResultsChanged(items []core.Item) {
	for _, l := range ls {
		l.ResultsChanged(items)
	}
}

func (ls Listeners) RecentSearchesChanged(queries []string) {
	for _, l := range ls {
		l.RecentSearchesChanged(queries)
	}
}

func (ls Listeners) DropdownOpenChanged(open bool) {
	for _, l := range ls {
		l.DropdownOpenChanged(open)
	}
}

func (ls Listeners) Navigate(target string) {
	for _, l := range ls {
		l.Navigate(target)
	}
}

// NopListener discards every event.
type NopListener struct{}

func (NopListener) ResultsChanged([]core.Item)     {}
func (NopListener) RecentSearchesChanged([]string) {}
func (NopListener) DropdownOpenChanged(bool)       {}
func (NopListener) Navigate(string)                {}
