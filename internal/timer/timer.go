// Package timer provides fixed-delay callbacks with cancellation tokens.
// Owners group their timers so that leaving a state cancels everything
// that state scheduled.
package timer

import (
	"sync"
	"time"
)

// Timer is a cancellation token for one scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) Timer

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer { return fn(d, f) }

// Real schedules callbacks on the runtime timer heap. Callbacks run on
// their own goroutine.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Group holds named timers owned by one state. Scheduling a name that is
// already pending replaces it. Group is not goroutine-safe; it is meant to
// be driven from a single event loop, with a Scheduler that delivers
// callbacks back onto that loop.
type Group struct {
	sched  Scheduler
	timers map[string]*entry
}

type entry struct {
	t         Timer
	cancelled bool
}

func NewGroup(sched Scheduler) *Group {
	return &Group{sched: sched, timers: make(map[string]*entry)}
}

// Schedule runs f after d unless name is cancelled first. A callback that
// was already handed to another goroutine when Cancel ran still does
// nothing, because it checks its own cancellation flag.
func (g *Group) Schedule(name string, d time.Duration, f func()) {
	g.Cancel(name)
	e := &entry{}
	e.t = g.sched.AfterFunc(d, func() {
		if e.cancelled {
			return
		}
		if cur, ok := g.timers[name]; ok && cur == e {
			delete(g.timers, name)
		}
		f()
	})
	g.timers[name] = e
}

// Cancel stops the named timer. It reports whether one was pending.
func (g *Group) Cancel(name string) bool {
	e, ok := g.timers[name]
	if !ok {
		return false
	}
	e.cancelled = true
	e.t.Stop()
	delete(g.timers, name)
	return true
}

// CancelAll stops every pending timer in the group.
func (g *Group) CancelAll() {
	for name := range g.timers {
		g.Cancel(name)
	}
}

// Pending reports whether name is scheduled and not yet fired.
func (g *Group) Pending(name string) bool {
	_, ok := g.timers[name]
	return ok
}

// Len returns the number of pending timers.
func (g *Group) Len() int { return len(g.timers) }

// Manual is a deterministic Scheduler for tests and simulations. Time only
// moves when Advance is called; due callbacks run synchronously on the
// caller's goroutine in deadline order.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	queue  []*manualTimer
	active map[*manualTimer]struct{}
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq int
	f   func()
}

func NewManual() *Manual {
	return &Manual{active: make(map[*manualTimer]struct{})}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.queue = append(m.queue, t)
	m.active[t] = struct{}{}
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.active[t]; !ok {
		return false
	}
	delete(t.m.active, t)
	return true
}

// Advance moves time forward by d and runs every callback that became due.
// Callbacks scheduled by callbacks run too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()
		next.f()
	}
}

// Elapsed returns how far Advance has moved the clock.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled, unstopped callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manual) popDue(target time.Duration) *manualTimer {
	best := -1
	for i, t := range m.queue {
		if _, ok := m.active[t]; !ok || t.at > target {
			continue
		}
		if best < 0 || t.at < m.queue[best].at || (t.at == m.queue[best].at && t.seq < m.queue[best].seq) {
			best = i
		}
	}
	if best < 0 {
		m.compact()
		return nil
	}
	t := m.queue[best]
	delete(m.active, t)
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	return t
}

func (m *Manual) compact() {
	kept := m.queue[:0]
	for _, t := range m.queue {
		if _, ok := m.active[t]; ok {
			kept = append(kept, t)
		}
	}
	m.queue = kept
}
