package events

// Goroutine safety: drain is the only reader of r.queue and the only writer
// to r.w. r.mu guards the ring pointer alone; the Ring has its own lock and
// is pushed to after r.mu is released.

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize bounds the number of events waiting for the drain goroutine.
const queueSize = 2048

type queued struct {
	line []byte
	ev   Event
}

// Recorder writes events as JSONL. Emit never blocks: when the queue is
// full or the recorder is closed the event is counted as dropped.
type Recorder struct {
	mu        sync.Mutex
	ring      *Ring
	sessionID string
	queue     chan queued
	w         io.Writer
	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewRecorder starts a Recorder writing to w. Call Close to flush.
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{
		sessionID: uuid.NewString(),
		queue:     make(chan queued, queueSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go r.drain()
	return r
}

// Discard returns a Recorder that throws events away, for tests and for
// runs where the event log cannot be opened.
func Discard() *Recorder {
	return NewRecorder(io.Discard)
}

func (r *Recorder) drain() {
	defer close(r.done)
	for q := range r.queue {
		if _, err := r.w.Write(q.line); err != nil {
			r.dropped.Add(1)
		}

		r.mu.Lock()
		ring := r.ring
		r.mu.Unlock()

		if ring != nil {
			ring.Push(q.ev)
		}
	}
}

// Emit queues e. Safe for concurrent use, including concurrently with Close.
func (r *Recorder) Emit(e Event) {
	if r == nil {
		return
	}
	// A send racing Close panics on the closed channel; count it as a drop.
	defer func() {
		if recover() != nil {
			r.dropped.Add(1)
		}
	}()

	if r.closed.Load() {
		r.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = r.sessionID

	line, err := json.Marshal(e)
	if err != nil {
		r.dropped.Add(1)
		return
	}
	line = append(line, '\n')

	select {
	case r.queue <- queued{line: line, ev: e}:
	default:
		r.dropped.Add(1)
	}
}

// Info emits an info event.
func (r *Recorder) Info(kind Kind, comp, msg string) {
	r.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn event.
func (r *Recorder) Warn(kind Kind, comp, msg string) {
	r.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error event. A nil err is recorded with an empty message.
func (r *Recorder) Error(kind Kind, comp string, err error) {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	r.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: msg})
}

// Attach mirrors every written event into ring.
func (r *Recorder) Attach(ring *Ring) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring = ring
}

// SessionID identifies this run; every event carries it.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Dropped is the number of events lost so far.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close flushes queued events and stops the drain goroutine. Idempotent.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.queue)
		<-r.done
	})
}
