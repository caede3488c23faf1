// Package testutil provides recording fakes for the runner, process probe and waiter
// so reconciliation logic can be exercised without launching real processes.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"runapp/internal/probe"
	"runapp/internal/runner"
)

// Handler scripts the outcome of one command.
type Handler func(cmd runner.Command) (*runner.Result, error)

// ExitStatus makes a command exit with code.
func ExitStatus(code int) Handler {
	return func(cmd runner.Command) (*runner.Result, error) {
		return &runner.Result{ExitCode: code}, &runner.CommandError{
			Command:  cmd.String(),
			Kind:     runner.KindExit,
			ExitCode: code,
			Err:      errors.New("exit status"),
		}
	}
}

// SpawnFailure makes a command fail to start.
func SpawnFailure() Handler {
	return func(cmd runner.Command) (*runner.Result, error) {
		return &runner.Result{ExitCode: -1}, &runner.CommandError{
			Command:  cmd.String(),
			Kind:     runner.KindSpawn,
			ExitCode: -1,
			Err:      errors.New("executable file not found in $PATH"),
		}
	}
}

// Runner records every command and answers with scripted handlers.
// Unscripted commands succeed with empty output. Safe for concurrent use.
type Runner struct {
	mu       sync.Mutex
	calls    []runner.Command
	handlers map[string]Handler
}

// NewRunner returns an empty recording runner.
func NewRunner() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle scripts key, which is either a full command line ("pkill mysqld") or a
// program name ("pkill"). Full command lines take precedence.
func (r *Runner) Handle(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
}

// Run implements runner.Runner. Handlers run outside the lock so one of them may
// block (a slow build) while other goroutines keep issuing commands.
func (r *Runner) Run(_ context.Context, cmd runner.Command) (*runner.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	h, ok := r.handlers[cmd.String()]
	if !ok {
		h, ok = r.handlers[cmd.Name]
	}
	r.mu.Unlock()

	if !ok {
		return &runner.Result{}, nil
	}
	return h(cmd)
}

// Calls returns a snapshot of the recorded commands in order.
func (r *Runner) Calls() []runner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runner.Command(nil), r.calls...)
}

// Lines returns the recorded command lines in order.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many recorded commands match key (full line or program name).
func (r *Runner) Count(key string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.String() == key || c.Name == key {
			n++
		}
	}
	return n
}

// Find returns the first recorded command matching key.
func (r *Runner) Find(key string) (runner.Command, bool) {
	for _, c := range r.Calls() {
		if c.String() == key || c.Name == key {
			return c, true
		}
	}
	return runner.Command{}, false
}

// Process is a settable process probe.
type Process struct {
	mu      sync.Mutex
	running bool
	queries int
	err     error
}

// Set changes the reported state.
func (p *Process) Set(running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = running
}

// Fail makes every following query return err.
func (p *Process) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Queries returns how many times the probe was asked.
func (p *Process) Queries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries
}

// Running implements probe.Process.
func (p *Process) Running(context.Context, string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries++
	return p.running, p.err
}

// Waiter never blocks. Until evaluates the condition once, which is enough when the
// fake runner's handlers change probe state synchronously.
type Waiter struct {
	mu       sync.Mutex
	sleeps   []time.Duration
	timeouts []time.Duration
}

// Sleep implements probe.Waiter.
func (w *Waiter) Sleep(_ context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sleeps = append(w.sleeps, d)
	return nil
}

// Until implements probe.Waiter.
func (w *Waiter) Until(ctx context.Context, timeout time.Duration, cond probe.Condition) (bool, error) {
	w.mu.Lock()
	w.timeouts = append(w.timeouts, timeout)
	w.mu.Unlock()
	return cond(ctx)
}

// Sleeps returns the recorded fixed pauses.
func (w *Waiter) Sleeps() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.sleeps...)
}

// Timeouts returns the bounds of every Until call.
func (w *Waiter) Timeouts() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.timeouts...)
}

// Lookup returns an environment lookup backed by vars.
func Lookup(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}
