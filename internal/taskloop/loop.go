// Package taskloop runs tasks in FIFO order on a single goroutine that is
// locked to its OS thread, for state that must only ever be touched from
// one thread (a graphics context, for example).
package taskloop

import (
	"bytes"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when posting to a loop that has been stopped.
var ErrStopped = errors.New("taskloop: loop stopped")

// Task is a unit of work executed on the loop goroutine.
// The Context argument proves the task runs on the loop.
type Task func(tc *Context)

// Context is handed to every task a Loop runs. It is the capability
// required to touch loop-bound state; code outside the loop never holds one.
type Context struct {
	loop *Loop
}

// Loop returns the loop that issued this context.
func (c *Context) Loop() *Loop {
	return c.loop
}

// Loop is a dedicated goroutine draining an unbounded FIFO task queue.
//
// Post never blocks, so producers are never throttled by a slow loop and the
// loop never waits on producers.
//
// Thread safety: Post, PostAndWait, Stop and RunsTasksOnCurrentGoroutine are
// safe for concurrent use.
type Loop struct {
	name string

	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []Task
	stopping bool

	running atomic.Bool
	goid    atomic.Int64
	done    chan struct{}

	ctx *Context
}

// New starts a loop with the given name. The loop goroutine is locked to an
// OS thread for its whole life.
func New(name string) *Loop {
	l := &Loop{
		name:  name,
		tasks: make([]Task, 0, 16),
		done:  make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	l.ctx = &Context{loop: l}
	l.running.Store(true)

	started := make(chan struct{})
	go l.run(started)
	<-started
	return l
}

// Name returns the loop name.
func (l *Loop) Name() string {
	return l.name
}

func (l *Loop) run(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	l.goid.Store(goroutineID())
	close(started)

	for {
		l.mu.Lock()
		for len(l.tasks) == 0 && !l.stopping {
			l.cond.Wait()
		}
		if len(l.tasks) == 0 && l.stopping {
			l.mu.Unlock()
			return
		}
		batch := l.tasks
		l.tasks = make([]Task, 0, cap(batch))
		l.mu.Unlock()

		for _, task := range batch {
			task(l.ctx)
		}
	}
}

// Post appends task to the queue. Tasks run in the order they were posted.
// Returns ErrStopped once Stop has been called.
func (l *Loop) Post(task Task) error {
	if task == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopping {
		return ErrStopped
	}
	l.tasks = append(l.tasks, task)
	l.cond.Signal()
	return nil
}

// PostAndWait posts task and blocks until it has run.
// Calling it from the loop goroutine would deadlock, so in that case the
// task runs inline.
func (l *Loop) PostAndWait(task Task) error {
	if l.RunsTasksOnCurrentGoroutine() {
		task(l.ctx)
		return nil
	}
	ran := make(chan struct{})
	if err := l.Post(func(tc *Context) {
		defer close(ran)
		task(tc)
	}); err != nil {
		return err
	}
	<-ran
	return nil
}

// RunsTasksOnCurrentGoroutine reports whether the caller is the loop
// goroutine.
func (l *Loop) RunsTasksOnCurrentGoroutine() bool {
	return l.goid.Load() == goroutineID()
}

// Stop refuses further tasks, lets already queued tasks finish and waits
// for the loop goroutine to exit. Stop is idempotent. Calling it from the
// loop goroutine panics.
func (l *Loop) Stop() {
	if l.RunsTasksOnCurrentGoroutine() {
		panic("taskloop: Stop called from the loop goroutine")
	}
	l.mu.Lock()
	l.stopping = true
	l.cond.Broadcast()
	l.mu.Unlock()

	<-l.done
	l.running.Store(false)
}

// IsRunning reports whether the loop goroutine is still alive.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Pending returns the number of queued tasks. Approximate by nature.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// goroutineID parses the current goroutine id from the stack header
// ("goroutine 18 [running]:").
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
