package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Advance fires due timers in deadline
// order on the calling goroutine.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	nextID int
}

type fakeTimer struct {
	id       int
	deadline time.Time
	fn       func()
	clk      *Fake
	stopped  bool
}

func NewFake() *Fake {
	return &Fake{now: time.Unix(1700000000, 0)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &fakeTimer{
		id:       f.nextID,
		deadline: f.now.Add(d),
		fn:       fn,
		clk:      f,
	}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward, firing every timer whose deadline is
// reached. Timers scheduled by fired callbacks are honored within the same
// advance if they fall inside the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		t := f.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

func (f *Fake) popDue(target time.Time) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].deadline.Equal(f.timers[j].deadline) {
			return f.timers[i].id < f.timers[j].id
		}
		return f.timers[i].deadline.Before(f.timers[j].deadline)
	})

	for i, t := range f.timers {
		if t.stopped {
			continue
		}
		if t.deadline.After(target) {
			break
		}
		f.timers = append(f.timers[:i], f.timers[i+1:]...)
		if t.deadline.After(f.now) {
			f.now = t.deadline
		}
		return t
	}
	return nil
}

func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
