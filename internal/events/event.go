// Package events records what the browser does as typed JSONL lines.
//
// A Recorder serializes events on a background goroutine so callers on the
// UI loop never block on disk. An optional Ring keeps the latest events in
// memory for the debug overlay.
package events

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind is "<subsystem>.<action>".
type Kind string

const (
	KindFetchStart    Kind = "fetch.start"
	KindFetchComplete Kind = "fetch.complete"
	KindFetchError    Kind = "fetch.error"

	KindCacheHit        Kind = "cache.hit"
	KindCacheMiss       Kind = "cache.miss"
	KindCacheStale      Kind = "cache.stale"
	KindCacheRefetch    Kind = "cache.refetch"
	KindCacheSuperseded Kind = "cache.superseded"

	KindPipelineRun Kind = "pipeline.run"

	KindKeyPress Kind = "ui.key"
	KindRefresh  Kind = "ui.refresh"
	KindOpenRepo Kind = "ui.open_repo"

	KindStartup  Kind = "sys.startup"
	KindShutdown Kind = "sys.shutdown"
	KindError    Kind = "sys.error"
)

// Event is one record. Only Kind is required; Time and SessionID are
// filled in by the Recorder.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      Kind          `json:"kind"`
	Comp      string        `json:"comp,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	Key       string        `json:"key,omitempty"` // request cache key
	Gen       uint64        `json:"gen,omitempty"` // request cache generation
	Dur       time.Duration `json:"-"`
	DurMs     float64       `json:"dur_ms,omitempty"`
	Count     int           `json:"count,omitempty"`
	Source    string        `json:"source,omitempty"`
	Query     string        `json:"query,omitempty"`
	Category  string        `json:"category,omitempty"`
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON writes Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
