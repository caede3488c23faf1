// Package build runs the Maven build as a background task that the foreground
// flow joins exactly once before deploying.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"runapp/internal/config"
	"runapp/internal/fsutil"
	"runapp/internal/logger"
	"runapp/internal/probe"
	"runapp/internal/runner"
)

// Goal is the Maven lifecycle phase the build runs.
type Goal string

const (
	GoalInstall Goal = "install"
	GoalPackage Goal = "package"
)

// Result is what the build produced. Err is nil on success and a *FailedError when
// Maven exited non-zero.
type Result struct {
	Goal Goal
	Err  error
}

// FailedError is a Maven run that exited non-zero. Excerpt holds the last lines of
// the build log in their original order.
type FailedError struct {
	Goal     Goal
	ExitCode int
	Log      string
	Excerpt  []string
	Err      error
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("maven %s failed with exit status %d (full log: %s)", e.Goal, e.ExitCode, e.Log)
	if len(e.Excerpt) > 0 {
		msg += "\n" + strings.Join(e.Excerpt, "\n")
	}
	return msg
}

func (e *FailedError) Unwrap() error { return e.Err }

// Coordinator prepares and launches the build.
type Coordinator struct {
	Runner runner.Runner
	FS     afero.Fs
	Layout config.Layout

	Command   []string // "mvn clean"
	Flags     []string // appended after the goal
	TailLines int
}

// NewCoordinator builds a Coordinator from the loaded configuration.
func NewCoordinator(r runner.Runner, fs afero.Fs, layout config.Layout, cfg config.Config) *Coordinator {
	return &Coordinator{
		Runner:    r,
		FS:        fs,
		Layout:    layout,
		Command:   cfg.Commands.Build,
		Flags:     cfg.Commands.BuildFlags,
		TailLines: cfg.Build.TailLines,
	}
}

// Prepare removes a previous target/ directory and picks the goal: a project that
// was built before only needs package, a fresh checkout needs install.
func (c *Coordinator) Prepare() (Goal, error) {
	target := c.Layout.TargetDir()
	if !probe.NewFilesystem(c.FS).IsDir(target) {
		return GoalInstall, nil
	}
	logger.Notice("Removing previous build output %s...\n", target)
	if err := fsutil.RemoveIfPresent(c.FS, target); err != nil {
		return "", fmt.Errorf("remove previous build: %w", err)
	}
	return GoalPackage, nil
}

// Task is a running build.
type Task struct {
	goal   Goal
	wg     sync.WaitGroup
	result Result
}

// Goal returns the goal the task was started with.
func (t *Task) Goal() Goal { return t.goal }

// Wait blocks until the build has finished and returns its result. Later calls
// return the same result.
func (t *Task) Wait() Result {
	t.wg.Wait()
	return t.result
}

// Start prepares the project and launches Maven on its own goroutine. The task always
// runs to completion; ctx is only handed to the runner.
func (c *Coordinator) Start(ctx context.Context) (*Task, error) {
	goal, err := c.Prepare()
	if err != nil {
		return nil, err
	}

	t := &Task{goal: goal}
	t.wg.Add(1)
	logger.Section("Building the application with maven (%s) in the background...\n", goal)
	go func() {
		defer t.wg.Done()
		t.result = Result{Goal: goal, Err: c.run(ctx, goal)}
		if t.result.Err == nil {
			logger.Info("[INFO] Maven %s finished\n", goal)
		}
	}()
	return t, nil
}

func (c *Coordinator) run(ctx context.Context, goal Goal) error {
	path := c.Layout.BuildLogPath()
	if err := fsutil.RemoveIfPresent(c.FS, path); err != nil {
		return fmt.Errorf("remove previous build log: %w", err)
	}
	if err := c.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create build log directory: %w", err)
	}
	log, err := c.FS.Create(path)
	if err != nil {
		return fmt.Errorf("create build log: %w", err)
	}

	args := append([]string{string(goal)}, c.Flags...)
	cmd := runner.FromArgv(c.Command, args...)
	cmd.Dir = c.Layout.Project
	cmd.Output = log
	logger.Debug("[DEBUG] Running %s, output in %s\n", cmd, path)

	_, runErr := c.Runner.Run(ctx, cmd)
	if err := log.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close build log: %w", err)
	}
	if runErr == nil {
		return nil
	}
	if !runner.IsExit(runErr) {
		return fmt.Errorf("run maven: %w", runErr)
	}

	failed := &FailedError{Goal: goal, ExitCode: runner.ExitCode(runErr), Log: path, Err: runErr}
	excerpt, err := c.tail(path)
	if err != nil {
		logger.Warn("[WARN] Could not read the build log: %v\n", err)
	}
	failed.Excerpt = excerpt
	return failed
}

func (c *Coordinator) tail(path string) ([]string, error) {
	f, err := c.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Tail(f, c.TailLines)
}
