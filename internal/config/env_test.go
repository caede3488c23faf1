package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runapp/internal/config"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestEnvResolvesConfiguredNames(t *testing.T) {
	env := config.NewEnv(config.Default().Env, lookupFrom(map[string]string{
		"HOME":          "/home/dev",
		"CATALINA_HOME": "/opt/tomcat",
		"MYSQL_INFILE":  "/nix/store/infile",
	}))

	home, err := env.Home()
	require.NoError(t, err)
	assert.Equal(t, "/home/dev", home)

	serverHome, err := env.ServerHome()
	require.NoError(t, err)
	assert.Equal(t, "/opt/tomcat", serverHome)

	script, err := env.InfileScript()
	require.NoError(t, err)
	assert.Equal(t, "/nix/store/infile", script)
}

func TestEnvMissingVariableIsTyped(t *testing.T) {
	env := config.NewEnv(config.Default().Env, lookupFrom(map[string]string{"MYSQL_DROP": ""}))

	_, err := env.DropScript()
	var missing *config.MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "MYSQL_DROP", missing.Name)

	_, err = env.CreateScript()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "MYSQL_INIT_REMOTE", missing.Name)
}

func TestEnvIsReadLazilyAndCached(t *testing.T) {
	calls := map[string]int{}
	env := config.NewEnv(config.Default().Env, func(name string) (string, bool) {
		calls[name]++
		return "/opt/tomcat", true
	})
	assert.Empty(t, calls)

	for i := 0; i < 3; i++ {
		_, err := env.ServerHome()
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"CATALINA_HOME": 1}, calls)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("RUNAPP_DOTENV_NEW=from-file\nRUNAPP_DOTENV_SET=from-file\n"), 0o644))

	t.Setenv("RUNAPP_DOTENV_SET", "from-shell")
	t.Cleanup(func() { _ = os.Unsetenv("RUNAPP_DOTENV_NEW") })

	require.NoError(t, config.LoadDotEnv(dir))
	assert.Equal(t, "from-file", os.Getenv("RUNAPP_DOTENV_NEW"))
	assert.Equal(t, "from-shell", os.Getenv("RUNAPP_DOTENV_SET"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, config.LoadDotEnv(t.TempDir()))
}

func TestLayoutPaths(t *testing.T) {
	l := config.NewLayout("/work/proj", "webapp", "tomcat/compile_log.txt")
	assert.Equal(t, "/work/proj/mysql/data", l.DataDir())
	assert.Equal(t, "/work/proj/mysql/socket.lock", l.LockFile())
	assert.Equal(t, "/work/proj/mysql/webapp.sql", l.SchemaMarker())
	assert.Equal(t, "/work/proj/target/webapp.war", l.War())
	assert.Equal(t, "/work/proj/tomcat/compile_log.txt", l.BuildLogPath())

	s := config.ServerLayout{Home: "/opt/tomcat", App: "webapp"}
	assert.Equal(t, "/opt/tomcat/webapps/webapp.war", s.DeployedWar())
	assert.Equal(t, "/opt/tomcat/webapps/webapp", s.DeployedDir())
	assert.Equal(t, "/opt/tomcat/bin/catalina.sh", s.Resolve("bin/catalina.sh"))
	assert.Equal(t, "/usr/bin/catalina", s.Resolve("/usr/bin/catalina"))
	assert.Equal(t, "/home/dev/.my.cnf", config.HomeCredentials("/home/dev"))
}
