package overlay

import (
	"sync"
	"testing"
	"time"

	"github.com/ovrlab/streambot/internal/clock"
	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/store"
	"go.uber.org/zap"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.PresentationEvent
}

func (r *recordingBroadcaster) Broadcast(ev domain.PresentationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBroadcaster) types(t *testing.T) []string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.TypeOrKey
	}
	return out
}

func alertEvent(name string, durationMs int) domain.PresentationEvent {
	return domain.PresentationEvent{
		Kind:       domain.PresentationAlert,
		TypeOrKey:  name,
		DurationMs: durationMs,
	}
}

func sfxEvent(name string) domain.PresentationEvent {
	return domain.PresentationEvent{
		Kind:      domain.PresentationSfx,
		TypeOrKey: name,
	}
}

func TestQueuePlaysInFIFOOrder(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())

	q.Enqueue(alertEvent("a", 2000))
	q.Enqueue(alertEvent("b", 1000))
	q.Enqueue(alertEvent("c", 1000))

	if got := out.types(t); len(got) != 1 || got[0] != "a" {
		t.Fatalf("only the head should be active, got %v", got)
	}

	// b must not start before a's hold plus gap elapses.
	clk.Advance(2999 * time.Millisecond)
	if got := out.types(t); len(got) != 1 {
		t.Fatalf("b started during a's hold+gap window: %v", got)
	}

	clk.Advance(1 * time.Millisecond)
	if got := out.types(t); len(got) != 2 || got[1] != "b" {
		t.Fatalf("expected b after a's window, got %v", got)
	}

	clk.Advance(2 * time.Second)
	got := out.types(t)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("playback order wrong: %v", got)
	}
}

func TestQueueDrainsToIdleAndRestarts(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())

	q.Enqueue(alertEvent("a", 1000))
	clk.Advance(5 * time.Second)

	if q.Depth() != 0 {
		t.Fatalf("queue should be drained, depth=%d", q.Depth())
	}

	q.Enqueue(alertEvent("b", 1000))
	if got := out.types(t); len(got) != 2 || got[1] != "b" {
		t.Fatalf("idle queue must start a fresh item immediately, got %v", got)
	}
}

func TestQueueSoundAdvancesOnPlaybackDone(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())

	q.Enqueue(sfxEvent("airhorn"))
	q.Enqueue(alertEvent("follow", 1000))

	// No timer drives a sound item.
	clk.Advance(time.Minute)
	if got := out.types(t); len(got) != 1 {
		t.Fatalf("sound item must wait for the playback signal, got %v", got)
	}

	q.PlaybackDone(out.events[0].Seq)
	if got := out.types(t); len(got) != 2 || got[1] != "follow" {
		t.Fatalf("expected follow after playback done, got %v", got)
	}
}

func TestQueueIgnoresDuplicateDoneSignals(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())

	q.Enqueue(sfxEvent("airhorn"))
	q.Enqueue(sfxEvent("drumroll"))
	q.Enqueue(sfxEvent("fanfare"))

	// Two connected pages both report the first sound finishing.
	first := out.events[0].Seq
	q.PlaybackDone(first)
	q.PlaybackDone(first)

	if got := out.types(t); len(got) != 2 || got[1] != "drumroll" {
		t.Fatalf("duplicate done must not skip the next sound, got %v", got)
	}

	q.PlaybackDone(out.events[1].Seq)
	if got := out.types(t); len(got) != 3 || got[2] != "fanfare" {
		t.Fatalf("expected fanfare after drumroll's own signal, got %v", got)
	}
}

func TestQueuePlaybackDoneIgnoredForTimedItem(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())

	q.Enqueue(alertEvent("a", 5000))
	q.Enqueue(alertEvent("b", 1000))

	// A stray done signal must not cut the active alert short.
	q.PlaybackDone(out.events[0].Seq)
	if got := out.types(t); len(got) != 1 {
		t.Fatalf("timed item was preempted by a stray signal: %v", got)
	}
}

func TestSenderDropsUnknownTypesBeforeEnqueue(t *testing.T) {
	out := &recordingBroadcaster{}
	clk := clock.NewFake()
	q := NewQueue(out, clk, time.Second, zap.NewNop())
	s := NewSender(q, zap.NewNop())
	s.SetCatalogs(map[string]store.AlertConfig{
		"follow": {Key: "follow", Message: "${user} followed!", Duration: 5},
		"empty":  {Key: "empty", Duration: 5},
	}, map[string]store.SfxConfig{
		"airhorn": {Key: "airhorn", File: "airhorn.mp3", Volume: 80},
	})

	s.SendAlert("nosuchalert", nil)
	s.SendAlert("empty", nil) // configured but contentless
	if q.Depth() != 0 {
		t.Fatal("invalid alerts must be dropped before the queue")
	}

	if s.SendSfx("nosuchsound") {
		t.Error("unknown sfx key must report failure")
	}

	s.SendAlert("follow", map[string]string{"user": "alice"})
	if got := out.types(t); len(got) != 1 || got[0] != "follow" {
		t.Fatalf("valid alert not played: %v", got)
	}
	if out.events[0].DurationMs != 5000 {
		t.Errorf("duration = %dms, want 5000", out.events[0].DurationMs)
	}
	if got := out.events[0].Payload["message"]; got != "alice followed!" {
		t.Errorf("rendered message = %q, want %q", got, "alice followed!")
	}
}
