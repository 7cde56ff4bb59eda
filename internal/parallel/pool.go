// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel runs independent bake tasks on a fixed set of goroutines.
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is submitted to a closed pool.
var ErrPoolClosed = errors.New("parallel: pool is closed")

// ErrTaskPanicked is matched by errors.Is for any [PanicError].
var ErrTaskPanicked = errors.New("parallel: task panicked")

// PanicError reports a task that panicked instead of returning.
type PanicError struct {
	// Task is the index of the task within its ExecuteAll batch.
	Task int

	// Value is the recovered panic value.
	Value any

	// Stack is the goroutine stack at the time of the panic.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: task %d panicked: %v", e.Task, e.Value)
}

// Unwrap returns ErrTaskPanicked.
func (e *PanicError) Unwrap() error {
	return ErrTaskPanicked
}

// Task is one independent unit of work. Tasks in a batch must not share
// mutable state; each writes only to memory it owns.
type Task func() error

// WorkerPool is a fixed pool of goroutines.
//
// Each worker pulls from its own queue and steals from the others when its
// queue is empty, which balances batches whose tasks differ in cost.
//
// Thread safety: ExecuteAll may be called from multiple goroutines and may
// race with Close. Close waits for batches already submitted; later
// batches get ErrPoolClosed.
type WorkerPool struct {
	workers int

	// mu is held shared by each ExecuteAll and exclusively by Close.
	mu sync.RWMutex

	// workQueues holds per-worker queues.
	workQueues []chan func()

	done chan struct{}
	wg   sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			work()

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				work()
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll runs every task and waits for all of them to finish before
// returning. Task errors, including recovered panics, are joined in task
// order. A nil return means every task completed successfully.
func (p *WorkerPool) ExecuteAll(tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return ErrPoolClosed
	}

	errs := make([]error, len(tasks))
	var completion sync.WaitGroup
	completion.Add(len(tasks))

	for i, task := range tasks {
		wrapped := func() {
			defer completion.Done()
			errs[i] = runTask(i, task)
		}

		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			errs[i] = ErrPoolClosed
			completion.Done()
		}
	}

	completion.Wait()
	return errors.Join(errs...)
}

func runTask(index int, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Task: index, Value: r, Stack: debug.Stack()}
		}
	}()
	if task == nil {
		return nil
	}
	return task()
}

// Close waits for running batches, then stops the workers.
// Close is safe to call multiple times. Tasks must not call Close.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the approximate number of queued items.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}
