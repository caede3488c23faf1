package env

import (
	"context"
	"errors"
	"fmt"

	"runapp/internal/logger"
	"runapp/internal/state"
)

// Run executes mode and records the outcome in the run journal, whether it
// succeeded or not.
func (s *Session) Run(ctx context.Context, mode Mode) error {
	rec := state.NewRunRecord(string(mode), s.Layout.App, s.Now())
	logger.Debug("[DEBUG] Run %s: mode %s for %s\n", rec.ID, mode, s.Layout.App)

	err := s.run(ctx, mode, &rec)

	rec.Finish(s.Now(), err)
	journal := state.LoadJournal(s.FS, s.JournalPath())
	journal.Record(rec)
	state.SaveJournal(s.FS, s.JournalPath(), journal)

	if err != nil {
		return err
	}
	Summary(rec.StartedAt, rec.FinishedAt)
	return nil
}

func (s *Session) run(ctx context.Context, mode Mode, rec *state.RunRecord) error {
	if err := s.Preflight(mode); err != nil {
		return err
	}

	switch mode {
	case ModeClean:
		return s.Teardown.StopAndClean(ctx)
	case ModeDrop:
		return s.Teardown.Drop(ctx)
	}

	switch mode {
	case ModeLocal, ModeCode:
		if err := s.Deployer.CheckPort(ctx); err != nil {
			return err
		}
		if err := s.Deployer.StopServer(ctx); err != nil {
			return err
		}
	case ModeDocker:
		logger.Notice("Stopping running services...\n")
		s.Deployer.StackDown(ctx)
	}

	task, err := s.Build.Start(ctx)
	if err != nil {
		return err
	}
	rec.BuildGoal = string(task.Goal())

	setupErr := s.provision(ctx, mode, rec)
	if setupErr != nil {
		logger.Notice("Database setup failed, waiting for the build to finish before exiting...\n")
	}
	// The setup failure is reported before the build failure.
	if err := errors.Join(setupErr, task.Wait().Err); err != nil {
		return err
	}

	switch mode {
	case ModeLocal, ModeCode:
		return s.Deployer.Deploy(ctx)
	case ModeDocker:
		return s.Deployer.BuildImage(ctx)
	default:
		return s.Deployer.CopySeedFiles(ctx)
	}
}

// provision is the foreground path that overlaps with the build.
func (s *Session) provision(ctx context.Context, mode Mode, rec *state.RunRecord) error {
	if err := s.Database.CleanCredentials(ctx); err != nil {
		return err
	}

	switch mode {
	case ModeLocal, ModeDocker:
		if err := s.Database.SetupLocal(ctx); err != nil {
			return err
		}
		decision, err := s.Database.Reconcile(ctx)
		rec.DBAction = string(decision.Action)
		return err
	case ModeCode, ModeDefault:
		return s.Database.SetupExternal(ctx)
	}
	return fmt.Errorf("mode %s does not provision a database", mode)
}
