package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"runapp/internal/logger"
)

// ProjectFile is the optional per-project configuration file.
const ProjectFile = "runapp.yaml"

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ProjectDir is the directory runapp was started in.
	ProjectDir string

	// File is an explicit project config path (--config). When set it must exist.
	File string

	// UserFile overrides the user-level config location. Empty means
	// $XDG_CONFIG_HOME/runapp/config.yaml; "-" disables the user-level file.
	UserFile string
}

// UserConfigPath returns the default user-level configuration path.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "runapp", "config.yaml")
}

// Load builds the effective configuration: defaults, then the user-level file,
// then the project file. Missing optional files are skipped; unreadable or
// malformed files are configuration errors.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	userFile := opts.UserFile
	if userFile == "" {
		userFile = UserConfigPath()
	}
	if userFile != "-" {
		if err := overlay(&cfg, userFile, false); err != nil {
			return Config{}, err
		}
	}

	projectFile := opts.File
	required := projectFile != ""
	if projectFile == "" {
		projectFile = filepath.Join(opts.ProjectDir, ProjectFile)
	}
	if err := overlay(&cfg, projectFile, required); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overlay decodes path on top of cfg. yaml.v3 only assigns keys present in the
// document, so absent keys keep the values from earlier layers.
func overlay(cfg *Config, path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			logger.Debug("[DEBUG] No config file at %s, skipping\n", path)
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Loaded config overlay %s\n", path)
	return nil
}

// Validate rejects configurations runapp cannot act on.
func (c Config) Validate() error {
	required := []struct {
		key  string
		argv []string
	}{
		{"commands.descriptor", c.Commands.Descriptor},
		{"commands.db_init", c.Commands.DBInit},
		{"commands.db_credentials", c.Commands.DBCredentials},
		{"commands.db_start", c.Commands.DBStart},
		{"commands.db_stop", c.Commands.DBStop},
		{"commands.db_kill", c.Commands.DBKill},
		{"commands.server_stop", c.Commands.ServerStop},
		{"commands.server_start", c.Commands.ServerStart},
		{"commands.stack_down", c.Commands.StackDown},
		{"commands.image_build", c.Commands.ImageBuild},
		{"commands.build", c.Commands.Build},
	}
	for _, r := range required {
		if len(r.argv) == 0 || r.argv[0] == "" {
			return fmt.Errorf("invalid config: %s must name a command", r.key)
		}
	}
	if strings.TrimSpace(c.Commands.PortCheck) == "" {
		return errors.New("invalid config: commands.port_check is empty")
	}
	if strings.Count(c.Commands.PortCheck, "%d") != 1 || strings.Count(c.Commands.PortCheck, "%") != 1 {
		return fmt.Errorf("invalid config: commands.port_check must contain exactly one %%d for the port, got %q", c.Commands.PortCheck)
	}
	switch c.Database.Probe {
	case "native", "pgrep":
	default:
		return fmt.Errorf("invalid config: database.probe must be \"native\" or \"pgrep\", got %q", c.Database.Probe)
	}
	if c.Database.ProcessName == "" {
		return errors.New("invalid config: database.process_name is empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d is out of range", c.Server.Port)
	}
	if c.Build.Log == "" {
		return errors.New("invalid config: build.log is empty")
	}
	if c.Build.TailLines <= 0 {
		return fmt.Errorf("invalid config: build.tail_lines must be positive, got %d", c.Build.TailLines)
	}
	if c.Timing.PollInterval <= 0 {
		return errors.New("invalid config: timing.poll_interval must be positive")
	}
	return nil
}
