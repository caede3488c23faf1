// Package teardown stops services in dependency order and removes generated state.
package teardown

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"runapp/internal/config"
	"runapp/internal/database"
	"runapp/internal/deploy"
	"runapp/internal/fsutil"
	"runapp/internal/logger"
	"runapp/internal/probe"
)

// Controller tears the environment down: application server first, then the
// container stack, then the database, then the files they leave behind.
type Controller struct {
	Database *database.Controller
	Deployer *deploy.Deployer
	FS       afero.Fs
	Env      *config.Env
	Layout   config.Layout
}

type homes struct {
	user   string
	server config.ServerLayout
}

// resolve reads every variable teardown needs before anything is stopped.
func (c *Controller) resolve() (homes, error) {
	user, err := c.Env.Home()
	if err != nil {
		return homes{}, err
	}
	server, err := c.Env.ServerHome()
	if err != nil {
		return homes{}, err
	}
	return homes{user: user, server: config.ServerLayout{Home: server, App: c.Layout.App}}, nil
}

// HasLocalData reports whether the project has a local database data directory.
func (c *Controller) HasLocalData() bool {
	return probe.NewFilesystem(c.FS).IsDir(c.Layout.DataDir())
}

// StopAndClean stops everything and removes generated files. Without a local data
// directory there is no database to stop and nothing is removed, so no home
// directory is needed either.
func (c *Controller) StopAndClean(ctx context.Context) error {
	hasData := c.HasLocalData()
	var h homes
	if hasData {
		var err error
		if h, err = c.resolve(); err != nil {
			return err
		}
	}
	return c.stopAndClean(ctx, h, hasData)
}

func (c *Controller) stopAndClean(ctx context.Context, h homes, hasData bool) error {
	logger.Notice("Cleaning up and stopping services...\n")
	if err := c.Deployer.StopServer(ctx); err != nil {
		return err
	}
	c.Deployer.StackDown(ctx)

	if !hasData {
		logger.Notice("No local database found. Continuing...\n")
		return nil
	}

	if err := c.Database.Stop(ctx); err != nil {
		return err
	}

	logger.Notice("Cleaning up files...\n")
	paths := []string{config.HomeCredentials(h.user), c.Layout.LocalCredentials()}
	paths = append(paths, c.Layout.BuildLeftovers()...)
	paths = append(paths,
		h.server.DeployedWar(),
		h.server.DeployedDir(),
		h.server.BinSrc(),
		h.server.Logs(),
		h.server.CompileLog(),
	)
	if err := fsutil.RemoveAllIfPresent(c.FS, paths...); err != nil {
		return fmt.Errorf("clean up: %w", err)
	}
	for _, dir := range c.Layout.ScratchDirs() {
		if err := fsutil.RemoveContents(c.FS, dir); err != nil {
			return fmt.Errorf("clean up: %w", err)
		}
	}

	logger.Info("[INFO] Stopped running processes\n")
	return nil
}

// Drop runs StopAndClean, drops the external schema when runapp created it, and
// removes the local data directory together with the server's deployed state.
func (c *Controller) Drop(ctx context.Context) error {
	h, err := c.resolve()
	if err != nil {
		return err
	}
	if err := c.stopAndClean(ctx, h, c.HasLocalData()); err != nil {
		return err
	}

	logger.Section("Starting to drop database...\n")
	if _, err := c.Database.DropSchema(ctx); err != nil {
		return err
	}

	if err := fsutil.RemoveAllIfPresent(c.FS, c.Layout.DataDir(), config.HomeCredentials(h.user)); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	for _, dir := range []string{h.server.BinSrc(), h.server.Logs(), h.server.Webapps(), c.Layout.LogsDir()} {
		if err := fsutil.RemoveContents(c.FS, dir); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
	}

	logger.Info("[INFO] Database dropped.\n")
	return nil
}
