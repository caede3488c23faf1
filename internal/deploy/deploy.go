// Package deploy stops and starts the application server, swaps the deployed WAR,
// builds the container image and places the database seed files.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"runapp/internal/archive"
	"runapp/internal/config"
	"runapp/internal/fsutil"
	"runapp/internal/logger"
	"runapp/internal/probe"
	"runapp/internal/runner"
)

// PortInUseError reports that something is already listening on the server port.
type PortInUseError struct {
	Port    int
	Listing string
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("cannot start Tomcat because port %d is in use:\n%s", e.Port, e.Listing)
}

// Deployer owns the application server side of a run.
type Deployer struct {
	Runner   runner.Runner
	FS       afero.Fs
	Env      *config.Env
	Layout   config.Layout
	Commands config.Commands
	Port     int
}

func (d *Deployer) server() (config.ServerLayout, error) {
	home, err := d.Env.ServerHome()
	if err != nil {
		return config.ServerLayout{}, err
	}
	return config.ServerLayout{Home: home, App: d.Layout.App}, nil
}

// CheckPort fails when the port check prints anything. grep exits 1 when nothing
// matched, which is the expected free-port outcome.
func (d *Deployer) CheckPort(ctx context.Context) error {
	logger.Notice("Checking if port %d is in use...\n", d.Port)
	res, err := d.Runner.Run(ctx, runner.Shell(fmt.Sprintf(d.Commands.PortCheck, d.Port)))
	if runner.IgnoreExit(err) != nil {
		return fmt.Errorf("check port %d: %w", d.Port, err)
	}
	if res != nil {
		if listing := strings.TrimSpace(res.Stdout); listing != "" {
			logger.Error("Port %d is in use by the following process:\n%s\n", d.Port, listing)
			return &PortInUseError{Port: d.Port, Listing: listing}
		}
	}
	return nil
}

// StopServer stops a running Tomcat. "Not running" is fine.
func (d *Deployer) StopServer(ctx context.Context) error {
	logger.Notice("Stopping running services...\n")
	if _, err := d.Runner.Run(ctx, runner.FromArgv(d.Commands.ServerStop)); runner.IgnoreExit(err) != nil {
		return fmt.Errorf("stop Tomcat: %w", err)
	}
	return nil
}

// StackDown brings the container stack down. Any failure is logged and ignored;
// there may be no compose file or no docker daemon on a plain local setup.
func (d *Deployer) StackDown(ctx context.Context) {
	if _, err := d.Runner.Run(ctx, runner.FromArgv(d.Commands.StackDown)); err != nil {
		logger.Warn("[WARN] Could not stop the container stack: %v\n", err)
	}
}

// Deploy replaces the deployed WAR with the freshly built one and starts Tomcat.
// It must only be called after a successful build.
func (d *Deployer) Deploy(ctx context.Context) error {
	srv, err := d.server()
	if err != nil {
		return err
	}
	logger.Section("Local environment detected...\n")
	logger.Notice("Setting up Tomcat...\n")

	if err := fsutil.RemoveAllIfPresent(d.FS, srv.DeployedWar(), srv.DeployedDir()); err != nil {
		return fmt.Errorf("remove previous deployment: %w", err)
	}

	logger.Notice("Deploying new WAR...\n")
	if err := fsutil.CopyFile(d.FS, d.Layout.War(), srv.DeployedWar()); err != nil {
		return fmt.Errorf("deploy %s: %w", d.Layout.War(), err)
	}

	if len(d.Commands.ServerStart) == 0 {
		return fmt.Errorf("no server start command configured")
	}
	cmd := runner.FromArgv(d.Commands.ServerStart)
	cmd.Name = srv.Resolve(cmd.Name)
	cmd.Dir = srv.Home
	logger.Info("[INFO] Starting Tomcat...\n")
	if _, err := d.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("start Tomcat: %w", err)
	}
	return nil
}

// BuildImage builds the <app>:latest container image from the project directory.
func (d *Deployer) BuildImage(ctx context.Context) error {
	tag := d.Layout.App + ":latest"
	cmd := runner.FromArgv(d.Commands.ImageBuild, "-t", tag, ".")
	cmd.Dir = d.Layout.Project
	logger.Notice("Building docker image %s...\n", tag)
	if _, err := d.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("build image %s: %w", tag, err)
	}
	return nil
}

// CopySeedFiles places the database seed files where the server resolves them.
// The seed directory wins; without it a seed archive next to it is extracted.
func (d *Deployer) CopySeedFiles(ctx context.Context) error {
	srv, err := d.server()
	if err != nil {
		return err
	}
	src, dest := d.Layout.SeedDir(), srv.SeedDest()
	files := probe.NewFilesystem(d.FS)

	if files.IsDir(src) {
		if !files.IsDir(dest) {
			logger.Notice("DB path does not exist. Creating...\n")
		}
		logger.Notice("Copying db files...\n")
		if err := fsutil.CopyDir(d.FS, src, dest); err != nil {
			return fmt.Errorf("copy seed files to %s: %w", dest, err)
		}
		return nil
	}

	for _, ext := range archive.Extensions {
		candidate := src + ext
		if !files.Exists(candidate) {
			continue
		}
		logger.Notice("Extracting db files from %s...\n", candidate)
		return archive.Extract(d.FS, candidate, dest)
	}
	return fmt.Errorf("no database seed files: %s does not exist", src)
}
