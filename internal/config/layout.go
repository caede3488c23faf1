package config

import "path/filepath"

// StateDirName is the project directory holding runapp's own lock and journal.
const StateDirName = ".runapp"

// Layout locates every generated file inside the project directory.
type Layout struct {
	Project  string
	App      string
	BuildLog string // relative to Project
}

// NewLayout returns the layout for app rooted at project.
func NewLayout(project, app, buildLog string) Layout {
	return Layout{Project: project, App: app, BuildLog: buildLog}
}

func (l Layout) path(parts ...string) string {
	return filepath.Join(append([]string{l.Project}, parts...)...)
}

func (l Layout) MySQLDir() string         { return l.path("mysql") }
func (l Layout) DataDir() string          { return l.path("mysql", "data") }
func (l Layout) Socket() string           { return l.path("mysql", "socket") }
func (l Layout) LockFile() string         { return l.path("mysql", "socket.lock") }
func (l Layout) LocalCredentials() string { return l.path("mysql", ".my.cnf") }

// SchemaMarker is the empty file recording that the external schema was created.
func (l Layout) SchemaMarker() string { return l.path("mysql", l.App+".sql") }

func (l Layout) TargetDir() string    { return l.path("target") }
func (l Layout) War() string          { return l.path("target", l.App+".war") }
func (l Layout) ExplodedWar() string  { return l.path("target", l.App) }
func (l Layout) BuildLogPath() string { return l.path(l.BuildLog) }
func (l Layout) StateDir() string     { return l.path(StateDirName) }

// BuildLeftovers lists the Maven outputs removed on teardown.
func (l Layout) BuildLeftovers() []string {
	return []string{
		l.War(),
		l.ExplodedWar(),
		l.path("target", "war"),
		l.path("target", "classes"),
		l.path("target", "generated-sources"),
		l.path("target", "maven-archiver"),
		l.path("target", "maven-status"),
	}
}

// ScratchDirs are project directories whose contents are regenerated on every run.
func (l Layout) ScratchDirs() []string {
	return []string{l.path("jdk"), l.path("logs"), l.path("overlays")}
}

func (l Layout) LogsDir() string { return l.path("logs") }

// SeedDir holds the database seed files copied next to the deployed server.
func (l Layout) SeedDir() string { return l.path("src", "main", "resources", "db", "application") }

// ServerLayout locates deployed state under the application server home.
type ServerLayout struct {
	Home string
	App  string
}

func (s ServerLayout) path(parts ...string) string {
	return filepath.Join(append([]string{s.Home}, parts...)...)
}

func (s ServerLayout) Webapps() string     { return s.path("webapps") }
func (s ServerLayout) DeployedWar() string { return s.path("webapps", s.App+".war") }
func (s ServerLayout) DeployedDir() string { return s.path("webapps", s.App) }
func (s ServerLayout) Logs() string        { return s.path("logs") }
func (s ServerLayout) BinSrc() string      { return s.path("bin", "src") }
func (s ServerLayout) CompileLog() string  { return s.path("compile_log.txt") }

// SeedDest mirrors Layout.SeedDir under bin/src, where the server resolves it at runtime.
func (s ServerLayout) SeedDest() string {
	return s.path("bin", "src", "main", "resources", "db", "application")
}

// Resolve turns a server-home-relative path into an absolute one. Absolute inputs are kept.
func (s ServerLayout) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return s.path(p)
}

// HomeCredentials is the per-user MySQL client credential file.
func HomeCredentials(home string) string {
	return filepath.Join(home, ".my.cnf")
}
