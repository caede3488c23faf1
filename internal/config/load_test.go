package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runapp/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(config.LoadOptions{ProjectDir: dir, UserFile: "-"})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 3*time.Second, cfg.Timing.StopTimeout)
	assert.Equal(t, 50, cfg.Build.TailLines)
}

func TestLoadProjectOverridesUser(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "user", "config.yaml")
	writeFile(t, userFile, `
server:
  port: 9090
database:
  probe: pgrep
timing:
  drain: 10s
`)
	writeFile(t, filepath.Join(dir, config.ProjectFile), `
server:
  port: 8181
commands:
  build: [./mvnw, clean]
`)

	cfg, err := config.Load(config.LoadOptions{ProjectDir: dir, UserFile: userFile})
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port, "project file wins")
	assert.Equal(t, "pgrep", cfg.Database.Probe, "user value survives when the project does not set it")
	assert.Equal(t, 10*time.Second, cfg.Timing.Drain)
	assert.Equal(t, []string{"./mvnw", "clean"}, cfg.Commands.Build)
	assert.Equal(t, []string{"mysqlinit"}, cfg.Commands.DBInit, "untouched keys keep their defaults")
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(config.LoadOptions{ProjectDir: dir, UserFile: "-", File: filepath.Join(dir, "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "server: [unclosed")

	_, err := config.Load(config.LoadOptions{ProjectDir: dir, UserFile: "-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown probe", func(c *config.Config) { c.Database.Probe = "ps" }, "database.probe"},
		{"empty start command", func(c *config.Config) { c.Commands.DBStart = nil }, "commands.db_start"},
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero tail", func(c *config.Config) { c.Build.TailLines = 0 }, "build.tail_lines"},
		{"zero poll interval", func(c *config.Config) { c.Timing.PollInterval = 0 }, "poll_interval"},
		{"empty port check", func(c *config.Config) { c.Commands.PortCheck = "" }, "commands.port_check is empty"},
		{"port check without port", func(c *config.Config) { c.Commands.PortCheck = "lsof -i | grep LISTEN" }, "exactly one %d"},
		{"port check with stray verb", func(c *config.Config) { c.Commands.PortCheck = "lsof -i :%d | grep %s" }, "exactly one %d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, config.Default().Validate())
}

func TestValidateReportsFirstMissingCommandInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Commands.Build = nil
	cfg.Commands.DBInit = nil
	cfg.Commands.StackDown = nil

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commands.db_init")
	}
}
