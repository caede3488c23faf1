package teardown_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runapp/internal/config"
	"runapp/internal/database"
	"runapp/internal/deploy"
	"runapp/internal/runner"
	"runapp/internal/teardown"
	"runapp/internal/testutil"
)

var vars = map[string]string{
	"HOME":          "/home/dev",
	"CATALINA_HOME": "/opt/tomcat",
	"MYSQL_DROP":    "/nix/store/mysql-drop",
}

type fixture struct {
	fs      afero.Fs
	runner  *testutil.Runner
	process *testutil.Process
	ctrl    *teardown.Controller
}

func newFixture(t *testing.T, env map[string]string) *fixture {
	t.Helper()
	cfg := config.Default()
	f := &fixture{fs: afero.NewMemMapFs(), runner: testutil.NewRunner(), process: &testutil.Process{}}
	e := config.NewEnv(cfg.Env, testutil.Lookup(env))
	layout := config.NewLayout("/work/proj", "webapp", cfg.Build.Log)

	db := &database.Controller{
		Runner: f.runner, FS: f.fs, Process: f.process, Waiter: &testutil.Waiter{},
		Env: e, Layout: layout, Commands: cfg.Commands, Timing: cfg.Timing,
		ProcessName: cfg.Database.ProcessName,
	}
	dep := &deploy.Deployer{
		Runner: f.runner, FS: f.fs, Env: e, Layout: layout,
		Commands: cfg.Commands, Port: cfg.Server.Port,
	}
	f.ctrl = &teardown.Controller{Database: db, Deployer: dep, FS: f.fs, Env: e, Layout: layout}

	f.runner.Handle("pkill", func(runner.Command) (*runner.Result, error) {
		f.process.Set(false)
		return &runner.Result{}, nil
	})
	return f
}

func (f *fixture) seed(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(f.fs, p, []byte("x"), 0o644))
	}
}

func (f *fixture) exists(p string) bool {
	ok, _ := afero.Exists(f.fs, p)
	return ok
}

var generated = []string{
	"/home/dev/.my.cnf",
	"/work/proj/mysql/.my.cnf",
	"/work/proj/target/webapp.war",
	"/work/proj/target/webapp/index.jsp",
	"/work/proj/target/war/work/x",
	"/work/proj/target/classes/App.class",
	"/work/proj/target/generated-sources/annotations/x",
	"/work/proj/target/maven-archiver/pom.properties",
	"/work/proj/target/maven-status/x",
	"/opt/tomcat/webapps/webapp.war",
	"/opt/tomcat/webapps/webapp/index.jsp",
	"/opt/tomcat/bin/src/main/resources/db/application/V1.sql",
	"/opt/tomcat/logs/catalina.out",
	"/opt/tomcat/compile_log.txt",
	"/work/proj/jdk/bin/java",
	"/work/proj/logs/app.log",
	"/work/proj/overlays/x.war",
}

func TestStopAndCleanWithoutDataDirSkipsDatabase(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, generated...)

	require.NoError(t, f.ctrl.StopAndClean(context.Background()))

	assert.Equal(t, []string{"sh -c stop_tomcat 2>/dev/null", "docker-compose down"}, f.runner.Lines())
	assert.Equal(t, 0, f.process.Queries())
	for _, p := range generated {
		assert.True(t, f.exists(p), "%s must survive", p)
	}
}

func TestStopAndCleanRemovesGeneratedState(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, generated...)
	f.seed(t, "/work/proj/mysql/data/ibdata1", "/work/proj/target/keep.txt", "/opt/tomcat/webapps/ROOT/index.html")
	f.process.Set(true)

	require.NoError(t, f.ctrl.StopAndClean(context.Background()))

	assert.Equal(t, []string{
		"sh -c stop_tomcat 2>/dev/null",
		"docker-compose down",
		"sh -c stop_mysql >/dev/null 2>&1",
		"pkill mysqld",
	}, f.runner.Lines())

	for _, p := range generated {
		assert.False(t, f.exists(p), "%s must be removed", p)
	}
	for _, dir := range []string{"/work/proj/jdk", "/work/proj/logs", "/work/proj/overlays"} {
		isDir, _ := afero.IsDir(f.fs, dir)
		assert.True(t, isDir, "%s is emptied, not removed", dir)
	}
	assert.True(t, f.exists("/work/proj/mysql/data/ibdata1"), "clean keeps the data")
	assert.True(t, f.exists("/work/proj/target/keep.txt"))
	assert.True(t, f.exists("/opt/tomcat/webapps/ROOT/index.html"))
}

func TestStopAndCleanIsIdempotent(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, "/work/proj/mysql/data/ibdata1")

	require.NoError(t, f.ctrl.StopAndClean(context.Background()))
	require.NoError(t, f.ctrl.StopAndClean(context.Background()))
}

func TestStopAndCleanFailsWhenDatabaseWillNotExit(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, "/work/proj/mysql/data/ibdata1", "/home/dev/.my.cnf")
	f.process.Set(true)
	f.runner.Handle("pkill", func(runner.Command) (*runner.Result, error) { return &runner.Result{}, nil })

	require.Error(t, f.ctrl.StopAndClean(context.Background()))
	assert.True(t, f.exists("/home/dev/.my.cnf"), "files stay while mysqld holds them")
}

func TestStopAndCleanChecksEnvironmentFirst(t *testing.T) {
	f := newFixture(t, map[string]string{"HOME": "/home/dev"})
	f.seed(t, "/work/proj/mysql/data/ibdata1")

	var missing *config.MissingEnvError
	require.ErrorAs(t, f.ctrl.StopAndClean(context.Background()), &missing)
	assert.Equal(t, "CATALINA_HOME", missing.Name)
	assert.Empty(t, f.runner.Calls())
}

func TestStopAndCleanWithoutDataDirNeedsNoEnvironment(t *testing.T) {
	f := newFixture(t, map[string]string{})

	require.NoError(t, f.ctrl.StopAndClean(context.Background()))
	assert.Equal(t, []string{"sh -c stop_tomcat 2>/dev/null", "docker-compose down"}, f.runner.Lines())
}

func TestDropStillRequiresEnvironmentWithoutDataDir(t *testing.T) {
	f := newFixture(t, map[string]string{"CATALINA_HOME": "/opt/tomcat"})

	var missing *config.MissingEnvError
	require.ErrorAs(t, f.ctrl.Drop(context.Background()), &missing)
	assert.Equal(t, "HOME", missing.Name)
	assert.Empty(t, f.runner.Calls())
}

func TestDropRemovesDataAndServerState(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, generated...)
	f.seed(t,
		"/work/proj/mysql/data/ibdata1",
		"/work/proj/mysql/webapp.sql",
		"/opt/tomcat/webapps/ROOT/index.html",
	)

	require.NoError(t, f.ctrl.Drop(context.Background()))

	assert.Equal(t, 1, f.runner.Count("/nix/store/mysql-drop"))
	assert.False(t, f.exists("/work/proj/mysql/webapp.sql"))
	assert.False(t, f.exists("/work/proj/mysql/data"))
	assert.False(t, f.exists("/opt/tomcat/webapps/ROOT"), "drop empties webapps")
	isDir, _ := afero.IsDir(f.fs, "/opt/tomcat/webapps")
	assert.True(t, isDir)
}

func TestDropWithoutMarkerDoesNotCallDropScript(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, "/work/proj/mysql/data/ibdata1")

	require.NoError(t, f.ctrl.Drop(context.Background()))
	assert.Equal(t, 0, f.runner.Count("/nix/store/mysql-drop"))
	assert.False(t, f.exists("/work/proj/mysql/data"))
}

func TestDropWithoutDataDirStillDropsSchema(t *testing.T) {
	f := newFixture(t, vars)
	f.seed(t, "/work/proj/mysql/webapp.sql", "/home/dev/.my.cnf")

	require.NoError(t, f.ctrl.Drop(context.Background()))
	assert.Equal(t, 1, f.runner.Count("/nix/store/mysql-drop"))
	assert.False(t, f.exists("/home/dev/.my.cnf"))
}
