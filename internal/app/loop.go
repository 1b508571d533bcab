package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/larek/internal/logging"
)

// Task is a unit of work run on the event loop.
type Task func(ctx context.Context) error

// Loop runs tasks one at a time on a single goroutine. Everything that
// touches the application state goes through it; background work posts its
// continuation back instead of mutating state directly.
type Loop struct {
	tasks   chan Task
	done    chan struct{}
	closed  sync.Once
	running atomic.Bool

	log     *logging.Logger
	metrics *Metrics
}

// NewLoop creates a loop with a queue of the given size.
func NewLoop(queue int, log *logging.Logger, metrics *Metrics) *Loop {
	if queue <= 0 {
		queue = 64
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Loop{
		tasks:   make(chan Task, queue),
		done:    make(chan struct{}),
		log:     log.WithComponent("loop"),
		metrics: metrics,
	}
}

// Post queues t. It blocks while the queue is full.
func (l *Loop) Post(t Task) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- t:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Do queues t and waits for its result.
func (l *Loop) Do(ctx context.Context, t Task) error {
	res := make(chan error, 1)
	err := l.Post(func(ctx context.Context) error {
		res <- t(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Run executes tasks until ctx is done or Close is called. Task errors are
// logged and do not stop the loop. The loop is closed when Run returns, so
// later Posts fail instead of waiting on a queue nobody drains.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case t := <-l.tasks:
			timer := StartTimer()
			err := t(ctx)
			l.metrics.RecordTask(timer.Elapsed(), err)
			if err != nil {
				l.log.Warn("task failed: %v", err)
			}
		}
	}
}

// Close stops the loop. Queued tasks are dropped.
func (l *Loop) Close() {
	l.closed.Do(func() {
		close(l.done)
	})
}
