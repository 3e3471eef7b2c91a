// Package saver implements the background persistence worker: a single
// goroutine draining a FIFO queue of save tasks, decoupled from the
// object it is about to be asked to start() so it can be constructed
// fresh per process instead of reached through a singleton.
package saver

import (
	"sync"

	"go.uber.org/zap"
)

// Task is an opaque, parameterless save operation. Each task must
// capture a snapshot of whatever it needs to write, so the worker never
// races with the owner of the live data.
type Task func() error

// Saver runs Tasks FIFO on a single background worker. Producers push
// tasks under a mutex and signal a condition variable; on Stop the
// worker drains whatever remains queued before exiting.
type Saver struct {
	log *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Task
	stopped bool
	done    chan struct{}
}

func New(log *zap.Logger) *Saver {
	s := &Saver{log: log, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start launches the background worker goroutine. Call once.
func (s *Saver) Start() {
	go s.workerLoop()
}

// Enqueue pushes task onto the FIFO queue and wakes the worker.
func (s *Saver) Enqueue(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, task)
	s.cond.Signal()
}

// Pending reports how many tasks are currently queued.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Saver) workerLoop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.stopped {
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.runTask(task)
	}
}

// runTask executes task, logging (and dropping) any failure. The caller
// retains its dirty bit on failure so the next periodic cycle retries —
// the saver itself has no notion of "which entity," only the closure.
func (s *Saver) runTask(task Task) {
	if err := task(); err != nil {
		s.log.Error("save task failed", zap.Error(err))
	}
}

// Flush blocks until every task queued at the time of the call has run.
// It does this by pushing a sentinel task onto the back of the queue and
// waiting for it to execute, preserving FIFO order relative to tasks
// already queued.
func (s *Saver) Flush() {
	sentinel := make(chan struct{})
	s.Enqueue(func() error {
		close(sentinel)
		return nil
	})
	<-sentinel
}

// Stop signals the worker to drain the remaining queue and exit, then
// blocks until it has done so.
func (s *Saver) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cond.Signal()
	s.mu.Unlock()
	<-s.done
}
