// Package register reads the project's registration descriptor, which names the
// application for the schema, the build artifact and the deployed webapp.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"runapp/internal/logger"
	"runapp/internal/runner"
)

// Descriptor is the evaluated register.nix.
type Descriptor struct {
	Name string `json:"registerName"`
}

// Parse decodes the descriptor JSON and validates the name.
func Parse(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("parse registration descriptor: %w", err)
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Descriptor{}, errors.New("registration descriptor has no registerName")
	}
	if strings.ContainsAny(d.Name, `/\`) || d.Name == "." || d.Name == ".." {
		return Descriptor{}, fmt.Errorf("registerName %q is not usable as a file name", d.Name)
	}
	return d, nil
}

// Load evaluates the descriptor with argv in dir and parses its output.
func Load(ctx context.Context, r runner.Runner, argv []string, dir string) (Descriptor, error) {
	cmd := runner.FromArgv(argv)
	cmd.Dir = dir
	logger.Debug("[DEBUG] Evaluating registration descriptor: %s\n", cmd)

	res, err := r.Run(ctx, cmd)
	if err != nil {
		return Descriptor{}, fmt.Errorf("evaluate registration descriptor: %w", err)
	}
	d, err := Parse([]byte(res.Stdout))
	if err != nil {
		return Descriptor{}, err
	}
	logger.Debug("[DEBUG] Registered application %s\n", d.Name)
	return d, nil
}
