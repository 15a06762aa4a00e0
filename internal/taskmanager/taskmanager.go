// Package taskmanager implements the wallet's cooperative background
// task runtime: periodic polling tasks (exchange rate refresh, LSP fee
// refresh, pending-payment reconciliation) that run for the lifetime of
// the wallet and must shut down cleanly on demand.
//
// Grounded on original_source/src/async_runtime.rs's
// spawn_repeating_task/spawn_self_restarting_task. The Rust original
// builds its own tokio runtime and schedules futures on it; idiomatic Go
// has no equivalent need for an explicit runtime, so this package
// expresses the same two task shapes directly with goroutines,
// time.Ticker and context.Context instead of carrying over a
// runtime-construction type.
package taskmanager

import (
	"context"
	"sync"
	"time"
)

// TaskManager owns every repeating/self-restarting task spawned through
// it and can shut all of them down together, e.g. on wallet Drop.
type TaskManager struct {
	mu    sync.Mutex
	tasks []*TaskHandle
}

// New returns an empty TaskManager.
func New() *TaskManager {
	return &TaskManager{}
}

// TaskHandle controls a single background task, mirroring
// async_runtime.rs's RepeatingTaskHandle.
type TaskHandle struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// RequestShutdown asks the task to stop at its next opportunity without
// waiting for it to do so. Safe to call more than once.
func (h *TaskHandle) RequestShutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Join blocks until the task has exited.
func (h *TaskHandle) Join() {
	<-h.done
}

// BlockingShutdown requests shutdown and waits for the task to exit.
func (h *TaskHandle) BlockingShutdown() {
	h.RequestShutdown()
	h.Join()
}

// IsFinished reports whether the task has already exited, without
// blocking.
func (h *TaskHandle) IsFinished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (m *TaskManager) track(h *TaskHandle) *TaskHandle {
	m.mu.Lock()
	m.tasks = append(m.tasks, h)
	m.mu.Unlock()
	return h
}

// SpawnRepeatingTask runs fn every interval until shut down, grounded on
// spawn_repeating_task: the tick fires first, then fn runs, then the
// loop waits for the next tick or a shutdown request. A fn call that
// overruns interval does not queue up extra calls — like tokio's
// MissedTickBehavior::Skip, a stdlib time.Ticker drops ticks that arrive
// while the channel already holds one.
func (m *TaskManager) SpawnRepeatingTask(ctx context.Context, interval time.Duration, fn func(context.Context)) *TaskHandle {
	h := &TaskHandle{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			fn(ctx)
		}
	}()
	return m.track(h)
}

// SpawnSelfRestartingTask runs fn repeatedly, waiting the duration it
// returns before the next call; fn returning ok=false ends the task.
// Grounded on spawn_self_restarting_task, used by tasks whose next delay
// depends on what just happened (e.g. backing off after a failure).
func (m *TaskManager) SpawnSelfRestartingTask(ctx context.Context, fn func(context.Context) (next time.Duration, ok bool)) *TaskHandle {
	h := &TaskHandle{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		for {
			next, ok := fn(ctx)
			if !ok {
				return
			}
			timer := time.NewTimer(next)
			select {
			case <-h.stop:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return m.track(h)
}

// ShutdownAll requests and waits for every task spawned through this
// manager to exit.
func (m *TaskManager) ShutdownAll() {
	m.mu.Lock()
	tasks := append([]*TaskHandle(nil), m.tasks...)
	m.mu.Unlock()

	for _, h := range tasks {
		h.RequestShutdown()
	}
	for _, h := range tasks {
		h.Join()
	}
}
