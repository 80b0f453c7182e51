// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worker provides the named execution contexts node subsystems
// run on: fixed-size pools of workers that tasks are scheduled onto. The
// state sync supervisor owns one pool per service it drives.
package worker

import (
	"errors"
	"sync"

	"github.com/chainflow/chainflowgo/utils"
)

var (
	_ Pool = (*pool)(nil)

	ErrNoWorkers = errors.New("an execution context needs at least one worker")
)

// Task is a unit of work scheduled onto a pool. A task carries its own
// state; the pool makes no ordering promise across workers.
type Task func()

// Pool is a named execution context. The name identifies the context to
// the runtime supervisor and in logs; it carries no behavior.
type Pool interface {
	// Name returns the name the pool was created with.
	Name() string

	// Start spawns the workers. Calling Start more than once is a no-op.
	Start()

	// Send hands [task] to an idle worker, blocking until one accepts
	// it. Outside the started-and-not-shut-down window the task is
	// silently dropped; scheduling onto a stopping context must never
	// block its caller.
	Send(Task)

	// Shutdown stops the workers and blocks until each has finished the
	// task it is running. Safe to call before Start and more than once.
	Shutdown()
}

type lifecycle int

const (
	statePristine lifecycle = iota
	stateRunning
	stateStopped
)

type pool struct {
	name    string
	workers int

	tasks chan Task
	// done is the workers' stop signal. [tasks] is never closed, so a
	// Send racing Shutdown lands on [done] instead of panicking.
	done chan struct{}

	// accepting flips true on Start and false on Shutdown; Send consults
	// it without taking the lock.
	accepting utils.Atomic[bool]

	lock  sync.Mutex
	state lifecycle
	idle  sync.WaitGroup
}

// NewPool returns a stopped execution context named [name] with
// [workers] workers. The context does no work until Start is called.
func NewPool(name string, workers int) (Pool, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	return &pool{
		name:    name,
		workers: workers,
		tasks:   make(chan Task),
		done:    make(chan struct{}),
	}, nil
}

func (p *pool) Name() string {
	return p.name
}

func (p *pool) Start() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.state != statePristine {
		return
	}
	p.state = stateRunning

	p.idle.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.work()
	}
	p.accepting.Set(true)
}

func (p *pool) work() {
	defer p.idle.Done()

	for {
		select {
		case <-p.done:
			return
		case task := <-p.tasks:
			if task != nil {
				task()
			}
		}
	}
}

func (p *pool) Send(task Task) {
	if !p.accepting.Get() {
		return
	}

	select {
	case p.tasks <- task:
	case <-p.done:
	}
}

func (p *pool) Shutdown() {
	p.lock.Lock()
	if p.state == statePristine {
		p.lock.Unlock()
		return
	}
	if p.state == stateRunning {
		p.state = stateStopped
		p.accepting.Set(false)
		close(p.done)
	}
	p.lock.Unlock()

	p.idle.Wait()
}
