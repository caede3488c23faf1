package env

import (
	"runapp/internal/probe"
)

// Preflight resolves every environment variable the mode will read, so a missing
// variable fails the run before anything is stopped, started or removed. Variables
// a mode never reads are not required.
func (s *Session) Preflight(mode Mode) error {
	homes := []func() (string, error){s.Env.Home, s.Env.ServerHome}
	marker := probe.NewFilesystem(s.FS).Exists(s.Layout.SchemaMarker())

	var checks []func() (string, error)
	if mode != ModeClean || s.Teardown.HasLocalData() {
		checks = append(checks, homes...)
	}
	switch mode {
	case ModeLocal, ModeDocker:
		checks = append(checks, s.Env.InfileScript)
	case ModeCode, ModeDefault:
		if marker {
			checks = append(checks, s.Env.InfileScript)
		} else {
			checks = append(checks, s.Env.CreateScript)
		}
	case ModeDrop:
		if marker {
			checks = append(checks, s.Env.DropScript)
		}
	}

	for _, check := range checks {
		if _, err := check(); err != nil {
			return err
		}
	}
	return nil
}
