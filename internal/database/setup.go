package database

import (
	"context"
	"fmt"

	"runapp/internal/config"
	"runapp/internal/fsutil"
	"runapp/internal/logger"
	"runapp/internal/runner"
)

// CleanCredentials removes the client credential files so the credential command
// rewrites them for this run, and makes sure the server's log directory exists.
// The build log is left alone: the build truncates it itself, and it may already
// be writing to it on the other goroutine.
func (c *Controller) CleanCredentials(ctx context.Context) error {
	home, err := c.Env.Home()
	if err != nil {
		return err
	}
	serverHome, err := c.Env.ServerHome()
	if err != nil {
		return err
	}

	logger.Notice("Cleaning up mysql credentials...\n")
	if err := fsutil.RemoveAllIfPresent(c.FS,
		config.HomeCredentials(home),
		c.Layout.LocalCredentials(),
	); err != nil {
		return fmt.Errorf("clean credentials: %w", err)
	}

	logs := config.ServerLayout{Home: serverHome, App: c.Layout.App}.Logs()
	if err := c.FS.MkdirAll(logs, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", logs, err)
	}
	return nil
}

// SetupLocal provisions the project-local instance: the data directory is
// initialized once, credentials are provisioned on every run (the command is
// idempotent on its own).
func (c *Controller) SetupLocal(ctx context.Context) error {
	logger.Section("\nDatabase setup...\n")
	logger.Notice("Setting up mysql in env...\n")

	if err := c.FS.MkdirAll(c.Layout.MySQLDir(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.Layout.MySQLDir(), err)
	}

	if !c.files().IsDir(c.Layout.DataDir()) {
		logger.Warn("[WARN] No database found. Creating...\n")
		cmd := runner.FromArgv(c.Commands.DBInit).WithEnv(c.ServiceEnv())
		if _, err := c.Runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("initialize MySQL: %w", err)
		}
	} else {
		logger.Notice("Local database already setup. Continuing...\n")
	}

	logger.Notice("Setting up mysqlcred...\n")
	cmd := runner.FromArgv(c.Commands.DBCredentials).WithEnv(c.ServiceEnv())
	if _, err := c.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("set up MySQL credentials: %w", err)
	}
	return nil
}

// SetupExternal prepares an externally hosted schema. The marker file
// mysql/<app>.sql is the only record that the schema was created; it is not
// checked against the remote server.
func (c *Controller) SetupExternal(ctx context.Context) error {
	logger.Notice("\nSetting up mysqlcred...\n")
	if _, err := c.Runner.Run(ctx, runner.FromArgv(c.Commands.DBCredentials)); err != nil {
		return fmt.Errorf("set up MySQL credentials: %w", err)
	}

	marker := c.Layout.SchemaMarker()
	if !c.files().Exists(marker) {
		script, err := c.Env.CreateScript()
		if err != nil {
			return err
		}
		logger.Warn("[WARN] No database found. Creating...\n")
		if _, err := c.Runner.Run(ctx, runner.Command{Name: script}); err != nil {
			return fmt.Errorf("create MySQL database %s: %w", c.Layout.App, err)
		}
		if err := fsutil.Touch(c.FS, marker); err != nil {
			return fmt.Errorf("record schema creation: %w", err)
		}
		logger.Info("[INFO] Created database %s\n", c.Layout.App)
		return nil
	}

	script, err := c.Env.InfileScript()
	if err != nil {
		return err
	}
	logger.Notice("Database %s already setup. Loading local files...\n", c.Layout.App)
	if _, err := c.Runner.Run(ctx, runner.Command{Name: script}); err != nil {
		return fmt.Errorf("load local MySQL file: %w", err)
	}
	return nil
}
