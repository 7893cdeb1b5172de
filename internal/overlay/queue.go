// Package overlay drives the remote display surface: a FIFO playback queue,
// the producer-side alert/sfx catalogs, and the websocket hub the overlay
// page connects to.
package overlay

import (
	"sync"
	"time"

	"github.com/ovrlab/streambot/internal/clock"
	"github.com/ovrlab/streambot/internal/domain"
	"go.uber.org/zap"
)

// Broadcaster pushes one presentation event to every connected overlay.
type Broadcaster interface {
	Broadcast(event domain.PresentationEvent)
}

// Queue sequences presentation events so at most one is active at a time.
// Items play in strict arrival order; a new item never preempts the active
// one. Timed items (alerts) hold for their duration plus a grace gap so
// consecutive alerts do not collide during the fade transition; sound items
// advance when the overlay reports playback finished.
type Queue struct {
	mu     sync.Mutex
	items  []domain.PresentationEvent
	active bool
	seq    uint64

	out    Broadcaster
	clk    clock.Clock
	gap    time.Duration
	logger *zap.Logger
}

func NewQueue(out Broadcaster, clk clock.Clock, gap time.Duration, logger *zap.Logger) *Queue {
	return &Queue{
		out:    out,
		clk:    clk,
		gap:    gap,
		logger: logger,
	}
}

// Enqueue appends an item and starts playback if the queue was idle. The
// queue assumes well-formed items; producers validate before enqueuing.
func (q *Queue) Enqueue(event domain.PresentationEvent) {
	q.mu.Lock()
	q.seq++
	event.Seq = q.seq
	q.items = append(q.items, event)
	if q.active {
		q.mu.Unlock()
		return
	}
	q.active = true
	q.mu.Unlock()

	q.playNext()
}

// PlaybackDone is the overlay's signal that the sound item tagged seq finished.
// Signals that do not name the active sound item are ignored, so a second
// overlay page reporting the same sound cannot advance the queue twice.
func (q *Queue) PlaybackDone(seq uint64) {
	q.mu.Lock()
	if !q.active || len(q.items) == 0 || q.items[0].Timed() || q.items[0].Seq != seq {
		q.mu.Unlock()
		return
	}
	q.items = q.items[1:]
	q.mu.Unlock()

	q.playNext()
}

// Depth returns the number of queued items, the active one included.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) playNext() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.active = false
		q.mu.Unlock()
		return
	}
	head := q.items[0]
	q.mu.Unlock()

	q.logger.Debug("overlay item active",
		zap.String("kind", string(head.Kind)),
		zap.String("type", head.TypeOrKey),
	)
	q.out.Broadcast(head)

	if head.Timed() {
		hold := time.Duration(head.DurationMs) * time.Millisecond
		q.clk.AfterFunc(hold+q.gap, q.advance)
	}
}

func (q *Queue) advance() {
	q.mu.Lock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	q.mu.Unlock()

	q.playNext()
}
