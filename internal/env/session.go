// Package env runs one runapp mode end to end: preflight, the concurrent build,
// database provisioning, the join, and the final deploy step.
package env

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"runapp/internal/build"
	"runapp/internal/config"
	"runapp/internal/database"
	"runapp/internal/deploy"
	"runapp/internal/probe"
	"runapp/internal/runner"
	"runapp/internal/teardown"
)

// Mode selects what a run does.
type Mode string

const (
	ModeLocal   Mode = "local"   // local database, deploy to Tomcat
	ModeCode    Mode = "code"    // external database, deploy to Tomcat (IDE debugging)
	ModeDocker  Mode = "docker"  // local database, build the container image
	ModeDefault Mode = "default" // external database, copy seed files
	ModeClean   Mode = "clean"
	ModeDrop    Mode = "drop"
)

// Modes lists every mode in the order the CLI presents them. ModeDefault runs
// when no subcommand is given.
var Modes = []Mode{ModeLocal, ModeCode, ModeDocker, ModeClean, ModeDrop, ModeDefault}

// Deps are the collaborators a Session is built from.
type Deps struct {
	Config  config.Config
	Layout  config.Layout
	Runner  runner.Runner
	FS      afero.Fs
	Process probe.Process
	Waiter  probe.Waiter
	Env     *config.Env
	Now     func() time.Time
}

// Session holds the components of one run, all sharing one runner, filesystem
// and environment.
type Session struct {
	Database *database.Controller
	Build    *build.Coordinator
	Deployer *deploy.Deployer
	Teardown *teardown.Controller

	Env    *config.Env
	FS     afero.Fs
	Layout config.Layout
	Now    func() time.Time
}

// New wires a Session.
func New(d Deps) *Session {
	if d.Now == nil {
		d.Now = time.Now
	}
	db := &database.Controller{
		Runner:      d.Runner,
		FS:          d.FS,
		Process:     d.Process,
		Waiter:      d.Waiter,
		Env:         d.Env,
		Layout:      d.Layout,
		Commands:    d.Config.Commands,
		Timing:      d.Config.Timing,
		ProcessName: d.Config.Database.ProcessName,
	}
	dep := &deploy.Deployer{
		Runner:   d.Runner,
		FS:       d.FS,
		Env:      d.Env,
		Layout:   d.Layout,
		Commands: d.Config.Commands,
		Port:     d.Config.Server.Port,
	}
	return &Session{
		Database: db,
		Build:    build.NewCoordinator(d.Runner, d.FS, d.Layout, d.Config),
		Deployer: dep,
		Teardown: &teardown.Controller{Database: db, Deployer: dep, FS: d.FS, Env: d.Env, Layout: d.Layout},
		Env:      d.Env,
		FS:       d.FS,
		Layout:   d.Layout,
		Now:      d.Now,
	}
}

// JournalPath is where the run journal is kept.
func (s *Session) JournalPath() string {
	return filepath.Join(s.Layout.StateDir(), "state.json")
}
