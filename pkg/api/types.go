package api

import (
	"time"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/query"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	IndexSize int       `json:"index_size"`
}

type SearchResponse struct {
	Query   string                `json:"query"`
	Results []core.Item           `json:"results"`
	Count   int                   `json:"count"`
	Limit   int                   `json:"limit"`
	ByType  map[core.ItemType]int `json:"by_type"`
}

// TextRequest carries the query box text of input, submit and recent
// selection events.
type TextRequest struct {
	Text string `json:"text"`
}

// SelectRequest identifies an indexed item.
type SelectRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type SelectResponse struct {
	Item   core.Item      `json:"item"`
	Target string         `json:"target,omitempty"`
	State  query.Snapshot `json:"state"`
}

type RecentResponse struct {
	Recent []string `json:"recent"`
	Count  int      `json:"count"`
}

type CatalogInfo struct {
	Name     string        `json:"name"`
	Kind     string        `json:"kind"`
	ItemType core.ItemType `json:"item_type"`
}

type CatalogsResponse struct {
	Catalogs  []CatalogInfo         `json:"catalogs"`
	Count     int                   `json:"count"`
	ByType    map[core.ItemType]int `json:"by_type"`
	IndexSize int                   `json:"index_size"`
	BuiltAt   time.Time             `json:"built_at"`
}

// InitMessage is the first frame sent on an events WebSocket.
type InitMessage struct {
	Type    string         `json:"type"`
	Session string         `json:"session"`
	State   query.Snapshot `json:"state"`
}

// ClientMessage is a frame sent by a WebSocket client. Type is one of
// input, submit, select, select_recent or clear_recent.
type ClientMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ID       string `json:"id,omitempty"`
	ItemType string `json:"item_type,omitempty"`
}
