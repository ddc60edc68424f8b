package search

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
)

// DefaultLimit caps the result list when no positive limit is given.
const DefaultLimit = 12

type match struct {
	pos  int
	item core.Item
}

// Search returns the items of idx matching query, ordered by type
// priority and then index position, capped at limit (DefaultLimit when
// limit <= 0). Excess matches are dropped.
func Search(idx *index.Index, query string, limit int) []core.Item {
	return searchTypes(idx, query, limit, nil)
}

func searchTypes(idx *index.Index, query string, limit int, types []core.ItemType) []core.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []core.Item{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []match
	for pos, item := range idx.All() {
		if len(types) > 0 && !slices.Contains(types, item.Type) {
			continue
		}
		if Matches(item, q) {
			matches = append(matches, match{pos: pos, item: item})
		}
	}

	slices.SortStableFunc(matches, func(a, b match) int {
		if d := a.item.Type.Priority() - b.item.Type.Priority(); d != 0 {
			return d
		}
		return a.pos - b.pos
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]core.Item, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out
}

// Matches reports whether lowered, an already trimmed and lower-cased
// query, is a substring of the item's title or subtitle.
func Matches(item core.Item, lowered string) bool {
	if strings.Contains(strings.ToLower(item.Title), lowered) {
		return true
	}
	return item.Subtitle != "" && strings.Contains(strings.ToLower(item.Subtitle), lowered)
}

// Params represents the parameters of a stateless search request.
type Params struct {
	// Query is the raw search text. It is trimmed before matching.
	Query string

	// Limit caps the result list. Defaults to DefaultLimit.
	Limit int

	// Types restricts matching to these item types. Empty means all.
	Types []core.ItemType
}

// Results carries the ranked items plus request echo fields.
type Results struct {
	Query  string                `json:"query"`
	Items  []core.Item           `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	ByType map[core.ItemType]int `json:"by_type"`
}

// Service runs searches against whatever index the provider returns at
// call time, so callers always see the latest rebuild.
type Service struct {
	current func() *index.Index
}

// NewService creates a service reading the index from provider.
func NewService(provider func() *index.Index) *Service {
	return &Service{current: provider}
}

// Search ranks the current index. Type filters apply before truncation.
func (s *Service) Search(params Params) *Results {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var idx *index.Index
	if s.current != nil {
		idx = s.current()
	}

	items := searchTypes(idx, params.Query, limit, params.Types)
	byType := make(map[core.ItemType]int)
	for _, item := range items {
		byType[item.Type]++
	}

	return &Results{
		Query:  params.Query,
		Items:  items,
		Total:  len(items),
		Limit:  limit,
		ByType: byType,
	}
}

// ParseSearchParams parses HTTP query parameters.
//
// Supported parameters:
//   - q: search text
//   - limit: positive integer, invalid values fall back to DefaultLimit
//   - type: item type filter, may be repeated; unknown types are an error
func ParseSearchParams(queryParams map[string][]string) (Params, error) {
	params := Params{Limit: DefaultLimit}

	if q := queryParams["q"]; len(q) > 0 {
		params.Query = q[0]
	}

	if limitStr := queryParams["limit"]; len(limitStr) > 0 && limitStr[0] != "" {
		if parsed, err := strconv.Atoi(limitStr[0]); err == nil && parsed > 0 {
			params.Limit = parsed
		}
	}

	for _, raw := range queryParams["type"] {
		if raw == "" {
			continue
		}
		typ, err := core.ParseItemType(raw)
		if err != nil {
			return params, fmt.Errorf("parsing type filter: %w", err)
		}
		params.Types = append(params.Types, typ)
	}

	return params, nil
}
