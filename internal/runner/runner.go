// Package runner executes external commands behind a single interface so that every
// call site shares one error classification policy: success, non-zero exit, or a
// failure to start the process at all.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"runapp/internal/logger"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the program to execute, looked up on PATH when it has no separator.
	Name string
	Args []string

	// Env is appended to the current environment. Later entries win over inherited ones.
	Env map[string]string

	// Dir is the working directory; empty means the current one.
	Dir string

	// Output, when set, receives stdout and stderr instead of the in-memory buffers.
	// The build uses it to stream Maven output into its log file.
	Output io.Writer
}

// String renders the command line the way a user would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// FromArgv builds a Command from a configured argv slice, appending extra arguments.
func FromArgv(argv []string, extra ...string) Command {
	if len(argv) == 0 {
		return Command{}
	}
	args := append(append([]string{}, argv[1:]...), extra...)
	return Command{Name: argv[0], Args: args}
}

// Shell wraps a script in `sh -c`.
func Shell(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

// WithEnv returns a copy of c with the given variables merged into its environment.
func (c Command) WithEnv(env map[string]string) Command {
	merged := make(map[string]string, len(c.Env)+len(env))
	for k, v := range c.Env {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}
	c.Env = merged
	return c
}

// Result holds what a finished command produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs commands. Implementations must be safe for concurrent use: the build
// runs on its own goroutine while the database is being provisioned.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ErrorKind classifies why a command failed.
type ErrorKind int

const (
	// KindSpawn means the process could not be started (missing binary, bad working dir).
	KindSpawn ErrorKind = iota
	// KindExit means the process ran and exited with a non-zero status.
	KindExit
)

func (k ErrorKind) String() string {
	if k == KindExit {
		return "non-zero exit"
	}
	return "spawn failure"
}

// CommandError reports a failed command together with its identity.
type CommandError struct {
	Command  string
	Kind     ErrorKind
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Kind == KindExit {
		msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
		if s := strings.TrimSpace(e.Stderr); s != "" {
			msg += ": " + s
		}
		return msg
	}
	return fmt.Sprintf("command %q could not be started: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsExit reports whether err is a CommandError for a process that ran and exited non-zero.
func IsExit(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) && cmdErr.Kind == KindExit
}

// ExitCode returns the exit status carried by err, or -1 when err is not an exit failure.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Kind == KindExit {
		return cmdErr.ExitCode
	}
	return -1
}

// IgnoreExit drops non-zero exit failures and keeps everything else.
// Used for stop commands where "was not running" is an acceptable outcome.
func IgnoreExit(err error) error {
	if IsExit(err) {
		return nil
	}
	return err
}

// DefaultWaitDelay bounds how long Run waits for output pipes after the process
// itself has exited. Commands like start_mysql leave a daemon behind that inherits
// the pipes and would otherwise keep Run blocked for the daemon's whole lifetime.
const DefaultWaitDelay = 500 * time.Millisecond

// Exec runs commands with os/exec.
type Exec struct {
	WaitDelay time.Duration
}

// NewExec returns the production runner.
func NewExec() *Exec {
	return &Exec{WaitDelay: DefaultWaitDelay}
}

// Run implements Runner.
func (e Exec) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = e.WaitDelay
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		keys := make([]string, 0, len(c.Env))
		for k := range c.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Env = append(cmd.Env, k+"="+c.Env[k])
		}
	}

	var stdout, stderr bytes.Buffer
	if c.Output != nil {
		cmd.Stdout = c.Output
		cmd.Stderr = c.Output
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	logger.Debug("[DEBUG] Running command: %s\n", c)
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// The process exited zero; a background child still holds its output.
		logger.Debug("[DEBUG] %s left a background process holding its output\n", c)
		err = nil
	}

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &CommandError{
			Command:  c.String(),
			Kind:     KindExit,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	result.ExitCode = -1
	return result, &CommandError{Command: c.String(), Kind: KindSpawn, ExitCode: -1, Err: err}
}
