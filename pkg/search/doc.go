// Package search is the ranking engine of the unified search box.
//
// # Overview
//
// A query is matched against every item of an index.Index and the
// matches are ordered by a fixed type priority, then by their position
// in the index:
//
//	setting (0) < page (1) < product (2) < everything else (3)
//
// Settings and navigation pages therefore surface above inventory
// records for the same query. Ties keep aggregation order, which makes
// the output fully reproducible for a given (index, query, limit).
//
// # Matching
//
//   - The query is trimmed; an empty query returns no results without
//     scanning the index.
//   - An item matches when the query is a case-insensitive substring of
//     its title or, when present, of its subtitle.
//   - There is no tokenization, stemming or fuzzy distance.
//
// # Usage
//
// Direct call against an index:
//
//	results := search.Search(idx, "espresso", search.DefaultLimit)
//
// Through the service, which also understands type filters and HTTP
// query parameters:
//
//	service := search.NewService(func() *index.Index { return facade.Index() })
//	params, err := search.ParseSearchParams(r.URL.Query())
//	if err != nil {
//		// unknown type filter
//	}
//	res := service.Search(params)
//
// # Integration
//
//   - pkg/index: the aggregated, immutable index being ranked
//   - pkg/query: the facade runs Search when the debounced query settles
//   - pkg/api and cmd: stateless search endpoint and CLI command
package search
