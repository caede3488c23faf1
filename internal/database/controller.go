// Package database reconciles the project-local MySQL instance and the schema it serves.
//
// The instance's state is never stored. Every call observes it again through two
// independent probes, the socket lock file under mysql/ and the process table,
// because the two disagree after crashes or partial cleanups.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"runapp/internal/config"
	"runapp/internal/fsutil"
	"runapp/internal/logger"
	"runapp/internal/probe"
	"runapp/internal/runner"
	"runapp/internal/state"
)

// Controller drives the database toward "running and accepting local-infile loads".
type Controller struct {
	Runner   runner.Runner
	FS       afero.Fs
	Process  probe.Process
	Waiter   probe.Waiter
	Env      *config.Env
	Layout   config.Layout
	Commands config.Commands
	Timing   config.Timing

	// ProcessName is the name looked up in the process table ("mysqld").
	ProcessName string
}

func (c *Controller) files() *probe.Filesystem {
	return probe.NewFilesystem(c.FS)
}

// ServiceEnv is the environment every database command runs with. User, password
// and database are all named after the application; the socket lives in the project.
func (c *Controller) ServiceEnv() map[string]string {
	return map[string]string{
		"MYSQL_USER":      c.Layout.App,
		"MYSQL_PASSWORD":  c.Layout.App,
		"MYSQL_DATABASE":  c.Layout.App,
		"MYSQL_UNIX_PORT": c.Layout.Socket(),
	}
}

// Observe reads the current ServiceState.
func (c *Controller) Observe(ctx context.Context) (state.ServiceState, error) {
	running, err := c.Process.Running(ctx, c.ProcessName)
	if err != nil {
		return state.ServiceState{}, fmt.Errorf("check %s process: %w", c.ProcessName, err)
	}
	return state.ServiceState{
		LockFilePresent: c.files().Exists(c.Layout.LockFile()),
		ProcessRunning:  running,
	}, nil
}

// Reconcile observes the instance, applies the corrective action for what it saw,
// and then grants local-infile permission, which has to be re-applied after every
// restart because the server does not persist it.
func (c *Controller) Reconcile(ctx context.Context) (state.Decision, error) {
	observed, err := c.Observe(ctx)
	if err != nil {
		return state.Decision{}, err
	}
	decision := state.Decide(observed)
	logger.Debug("[DEBUG] MySQL observed as %s, action %s\n", observed, decision.Action)

	switch decision.Action {
	case state.ActionStart:
		logger.Section("Starting MySQL as %s...\n", decision.Reason)
		err = c.start(ctx)

	case state.ActionNone:
		logger.Notice("%s. Continuing...\n", decision.Reason)

	case state.ActionRestart:
		logger.Warn("[WARN] %s. Killing MySQL and restarting...\n", decision.Reason)
		if err = c.kill(ctx, c.Timing.StopTimeout); err == nil {
			err = c.start(ctx)
		}

	case state.ActionRecoverStaleLock:
		logger.Warn("[WARN] %s. Removing the stale lock and starting fresh...\n", decision.Reason)
		if err = fsutil.RemoveIfPresent(c.FS, c.Layout.LockFile()); err == nil {
			err = c.start(ctx)
		}
	}
	if err != nil {
		return decision, err
	}

	if err := c.GrantFileImport(ctx); err != nil {
		return decision, err
	}
	return decision, nil
}

// start launches the server and waits until both probes agree it is up.
func (c *Controller) start(ctx context.Context) error {
	cmd := runner.FromArgv(c.Commands.DBStart).WithEnv(c.ServiceEnv())
	if _, err := c.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("start MySQL: %w", err)
	}

	ready, err := c.Waiter.Until(ctx, c.Timing.ReadyTimeout, func(ctx context.Context) (bool, error) {
		s, err := c.Observe(ctx)
		return s.LockFilePresent && s.ProcessRunning, err
	})
	if err != nil {
		return fmt.Errorf("wait for MySQL to start: %w", err)
	}
	if !ready {
		return fmt.Errorf("MySQL did not come up within %s (expected %s and a running %s)",
			c.Timing.ReadyTimeout, c.Layout.LockFile(), c.ProcessName)
	}
	logger.Info("[INFO] MySQL is up\n")
	return nil
}

// kill force-stops the server and waits up to timeout for it to leave the process table.
// A kill that matched nothing is fine; the process may have exited on its own.
func (c *Controller) kill(ctx context.Context, timeout time.Duration) error {
	if _, err := c.Runner.Run(ctx, runner.FromArgv(c.Commands.DBKill)); runner.IgnoreExit(err) != nil {
		return fmt.Errorf("kill MySQL: %w", err)
	}
	return c.waitStopped(ctx, timeout)
}

func (c *Controller) waitStopped(ctx context.Context, timeout time.Duration) error {
	gone, err := c.Waiter.Until(ctx, timeout, func(ctx context.Context) (bool, error) {
		running, err := c.Process.Running(ctx, c.ProcessName)
		return !running, err
	})
	if err != nil {
		return fmt.Errorf("wait for MySQL to exit: %w", err)
	}
	if !gone {
		return fmt.Errorf("%s is still running after %s", c.ProcessName, timeout)
	}
	return nil
}

// GrantFileImport runs the bulk-load permission script against the project socket.
func (c *Controller) GrantFileImport(ctx context.Context) error {
	script, err := c.Env.InfileScript()
	if err != nil {
		return err
	}
	logger.Notice("Setting load local infile permissions...\n")
	cmd := runner.Command{Name: script, Env: map[string]string{"MYSQL_UNIX_PORT": c.Layout.Socket()}}
	if _, err := c.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("grant local infile permission: %w", err)
	}
	return nil
}

// Stop shuts the server down for teardown: a graceful stop that tolerates "not
// running", a kill when the process survived it, then a bounded drain.
func (c *Controller) Stop(ctx context.Context) error {
	logger.Notice("Cleaning up and stopping MySQL...\n")
	if _, err := c.Runner.Run(ctx, runner.FromArgv(c.Commands.DBStop)); runner.IgnoreExit(err) != nil {
		return fmt.Errorf("stop MySQL: %w", err)
	}

	running, err := c.Process.Running(ctx, c.ProcessName)
	if err != nil {
		return fmt.Errorf("check %s process: %w", c.ProcessName, err)
	}
	if running {
		logger.Warn("[WARN] %s survived the graceful stop, killing it\n", c.ProcessName)
		if _, err := c.Runner.Run(ctx, runner.FromArgv(c.Commands.DBKill)); runner.IgnoreExit(err) != nil {
			return fmt.Errorf("kill MySQL: %w", err)
		}
	}

	logger.Notice("Awaiting MySQL shutdown...\n")
	return c.waitStopped(ctx, c.Timing.Drain)
}

// DropSchema drops the externally hosted schema when its marker says runapp created
// it, then forgets the marker. It reports whether anything was dropped.
func (c *Controller) DropSchema(ctx context.Context) (bool, error) {
	marker := c.Layout.SchemaMarker()
	if !c.files().Exists(marker) {
		logger.Debug("[DEBUG] No schema marker at %s, nothing to drop\n", marker)
		return false, nil
	}

	script, err := c.Env.DropScript()
	if err != nil {
		return false, err
	}
	logger.Notice("Dropping external database %s...\n", c.Layout.App)
	if _, err := c.Runner.Run(ctx, runner.Command{Name: script}); err != nil {
		return false, fmt.Errorf("drop database %s: %w", c.Layout.App, err)
	}
	if err := c.Waiter.Sleep(ctx, c.Timing.DropSettle); err != nil {
		return false, err
	}
	if err := fsutil.RemoveIfPresent(c.FS, marker); err != nil {
		return false, err
	}
	return true, nil
}
