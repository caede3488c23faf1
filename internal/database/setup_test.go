package database_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runapp/internal/config"
	"runapp/internal/testutil"
)

func TestSetupLocalInitializesMissingDataDir(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.ctrl.SetupLocal(context.Background()))
	assert.Equal(t, []string{"mysqlinit", "mysqlcred"}, f.runner.Lines())

	initCall, _ := f.runner.Find("mysqlinit")
	assert.Equal(t, "webapp", initCall.Env["MYSQL_DATABASE"])

	isDir, _ := afero.IsDir(f.fs, "/work/proj/mysql")
	assert.True(t, isDir)
}

func TestSetupLocalReusesExistingDataDir(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.fs.MkdirAll("/work/proj/mysql/data", 0o755))

	require.NoError(t, f.ctrl.SetupLocal(context.Background()))
	assert.Equal(t, []string{"mysqlcred"}, f.runner.Lines())
}

func TestSetupLocalInitFailureStopsBeforeCredentials(t *testing.T) {
	f := newFixture(t, nil)
	f.runner.Handle("mysqlinit", testutil.ExitStatus(1))

	err := f.ctrl.SetupLocal(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize MySQL")
	assert.Equal(t, 0, f.runner.Count("mysqlcred"))
}

func TestSetupExternalCreatesSchemaOnce(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.ctrl.SetupExternal(context.Background()))
	assert.Equal(t, []string{"mysqlcred", "/nix/store/mysql-init-remote"}, f.runner.Lines())

	exists, _ := afero.Exists(f.fs, "/work/proj/mysql/webapp.sql")
	assert.True(t, exists, "marker records the creation")
}

func TestSetupExternalLoadsWhenMarkerExists(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, afero.WriteFile(f.fs, "/work/proj/mysql/webapp.sql", nil, 0o644))

	require.NoError(t, f.ctrl.SetupExternal(context.Background()))
	assert.Equal(t, []string{"mysqlcred", infile}, f.runner.Lines())
	assert.Equal(t, 0, f.runner.Count("/nix/store/mysql-init-remote"))
}

func TestSetupExternalCreateFailureLeavesNoMarker(t *testing.T) {
	f := newFixture(t, nil)
	f.runner.Handle("/nix/store/mysql-init-remote", testutil.ExitStatus(1))

	require.Error(t, f.ctrl.SetupExternal(context.Background()))
	exists, _ := afero.Exists(f.fs, "/work/proj/mysql/webapp.sql")
	assert.False(t, exists)
}

func TestSetupExternalCredentialsRunWithoutServiceEnv(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ctrl.SetupExternal(context.Background()))

	cred, _ := f.runner.Find("mysqlcred")
	assert.Empty(t, cred.Env)
}

func TestCleanCredentials(t *testing.T) {
	f := newFixture(t, nil)
	for _, p := range []string{"/home/dev/.my.cnf", "/work/proj/mysql/.my.cnf", "/home/dev/.bashrc"} {
		require.NoError(t, afero.WriteFile(f.fs, p, []byte("x"), 0o600))
	}

	require.NoError(t, f.ctrl.CleanCredentials(context.Background()))

	for _, p := range []string{"/home/dev/.my.cnf", "/work/proj/mysql/.my.cnf"} {
		exists, _ := afero.Exists(f.fs, p)
		assert.False(t, exists, p)
	}
	exists, _ := afero.Exists(f.fs, "/home/dev/.bashrc")
	assert.True(t, exists)
	isDir, _ := afero.IsDir(f.fs, "/opt/tomcat/logs")
	assert.True(t, isDir)
	assert.Empty(t, f.runner.Calls())
}

func TestCleanCredentialsRequiresServerHome(t *testing.T) {
	f := newFixture(t, map[string]string{"HOME": "/home/dev"})
	require.NoError(t, afero.WriteFile(f.fs, "/home/dev/.my.cnf", []byte("x"), 0o600))

	err := f.ctrl.CleanCredentials(context.Background())
	var missing *config.MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "CATALINA_HOME", missing.Name)

	exists, _ := afero.Exists(f.fs, "/home/dev/.my.cnf")
	assert.True(t, exists, "nothing is removed before configuration is complete")
}
