package domain

import "time"

// View names a renderable cache.
type View string

const (
	ViewBlocks View = "blocks"
	ViewGroups View = "groups"
)

// CacheChanged signals that a view's cache grew or shrank since it was last
// rendered.
type CacheChanged struct {
	ID      string    `json:"id"`
	View    View      `json:"view"`
	Size    int       `json:"size"`
	Epoch   uint64    `json:"epoch"`
	Session string    `json:"session"`
	At      time.Time `json:"at"`
}
