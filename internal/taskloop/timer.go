package taskloop

import "time"

// RepeatingTimer runs a task on a loop at a fixed interval until stopped.
// A zero interval re-posts the task right after each run, so it fires as
// often as the loop allows while still letting other queued tasks in
// between firings.
//
// All methods must be called from the owning loop.
type RepeatingTimer struct {
	loop     *Loop
	interval time.Duration
	task     Task

	running bool
	gen     uint64
	timer   *time.Timer
}

// NewRepeatingTimer creates a stopped timer. Call Reset to start it.
func NewRepeatingTimer(l *Loop, interval time.Duration, task Task) *RepeatingTimer {
	return &RepeatingTimer{loop: l, interval: interval, task: task}
}

// Reset (re)starts the timer; the first firing happens one interval from now.
func (t *RepeatingTimer) Reset(tc *Context) {
	t.check(tc)
	t.cancel()
	t.running = true
	t.schedule()
}

// Stop cancels pending firings. A firing already queued on the loop is
// discarded when it runs.
func (t *RepeatingTimer) Stop(tc *Context) {
	t.check(tc)
	t.cancel()
	t.running = false
}

// IsRunning reports whether the timer is started.
func (t *RepeatingTimer) IsRunning(tc *Context) bool {
	t.check(tc)
	return t.running
}

func (t *RepeatingTimer) cancel() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *RepeatingTimer) schedule() {
	gen := t.gen
	fire := func(tc *Context) {
		if !t.running || t.gen != gen {
			return
		}
		t.task(tc)
		if t.running && t.gen == gen {
			t.schedule()
		}
	}
	if t.interval <= 0 {
		_ = t.loop.Post(fire)
		return
	}
	t.timer = time.AfterFunc(t.interval, func() {
		_ = t.loop.Post(fire)
	})
}

func (t *RepeatingTimer) check(tc *Context) {
	if tc == nil || tc.loop != t.loop {
		panic("taskloop: timer used outside its loop")
	}
}
