package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"runapp/internal/config"
	"runapp/internal/env"
	"runapp/internal/logger"
	"runapp/internal/probe"
	"runapp/internal/register"
	"runapp/internal/runlock"
	"runapp/internal/runner"
)

// runMode loads configuration, takes the project run lock and runs mode against
// the real filesystem, process table and commands.
func runMode(cmd *cobra.Command, mode env.Mode) error {
	ctx := cmd.Context()

	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(dir); err != nil {
		return err
	}
	cfg, err := config.Load(config.LoadOptions{ProjectDir: dir, File: configPath})
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(filepath.Join(dir, config.StateDirName, runlock.FileName))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("[WARN] %v\n", err)
		}
	}()

	r := runner.NewExec()
	desc, err := register.Load(ctx, r, cfg.Commands.Descriptor, dir)
	if err != nil {
		return err
	}
	process, err := probe.NewProcess(cfg.Database.Probe, r)
	if err != nil {
		return err
	}

	session := env.New(env.Deps{
		Config:  cfg,
		Layout:  config.NewLayout(dir, desc.Name, cfg.Build.Log),
		Runner:  r,
		FS:      afero.NewOsFs(),
		Process: process,
		Waiter:  probe.NewPoller(cfg.Timing.PollInterval),
		Env:     config.NewEnv(cfg.Env, nil),
	})
	return session.Run(ctx, mode)
}

func resolveProjectDir() (string, error) {
	if projectDir != "" {
		abs, err := filepath.Abs(projectDir)
		if err != nil {
			return "", fmt.Errorf("resolve project directory: %w", err)
		}
		return abs, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return dir, nil
}
