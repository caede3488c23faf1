package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"runapp/internal/logger"
)

// MissingEnvError is returned when a variable a code path depends on is unset or empty.
type MissingEnvError struct {
	Name    string
	Purpose string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("environment variable %s (%s) is not set", e.Name, e.Purpose)
}

// LoadDotEnv loads <projectDir>/.env into the process environment.
// Variables that are already set are left alone; a missing file is not an error.
func LoadDotEnv(projectDir string) error {
	path := filepath.Join(projectDir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Loaded environment from %s\n", path)
	return nil
}

// Env resolves environment values lazily. Nothing is read until a code path asks
// for it, so a mode never fails on a variable it does not use.
type Env struct {
	names  EnvNames
	lookup func(string) (string, bool)

	mu    sync.Mutex
	cache map[string]string
}

// NewEnv creates a resolver. A nil lookup uses os.LookupEnv.
func NewEnv(names EnvNames, lookup func(string) (string, bool)) *Env {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Env{names: names, lookup: lookup, cache: make(map[string]string)}
}

func (e *Env) require(name, purpose string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.cache[name]; ok {
		return v, nil
	}
	v, ok := e.lookup(name)
	if !ok || v == "" {
		return "", &MissingEnvError{Name: name, Purpose: purpose}
	}
	e.cache[name] = v
	return v, nil
}

// Home returns the user's home directory.
func (e *Env) Home() (string, error) {
	return e.require(e.names.Home, "home directory")
}

// ServerHome returns the Tomcat installation directory.
func (e *Env) ServerHome() (string, error) {
	return e.require(e.names.ServerHome, "application server home")
}

// InfileScript returns the script that enables local-infile bulk loading.
func (e *Env) InfileScript() (string, error) {
	return e.require(e.names.InfileScript, "bulk-load permission script")
}

// CreateScript returns the script that creates the external schema.
func (e *Env) CreateScript() (string, error) {
	return e.require(e.names.CreateScript, "schema create script")
}

// DropScript returns the script that drops the external schema.
func (e *Env) DropScript() (string, error) {
	return e.require(e.names.DropScript, "schema drop script")
}
