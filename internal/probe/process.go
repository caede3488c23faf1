package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"runapp/internal/logger"
	"runapp/internal/runner"
)

// Process reports whether a process with the given name is running.
type Process interface {
	Running(ctx context.Context, name string) (bool, error)
}

// NewProcess returns the probe selected by kind ("native" or "pgrep").
func NewProcess(kind string, r runner.Runner) (Process, error) {
	switch kind {
	case "native":
		return ProcessTable{}, nil
	case "pgrep":
		return Pgrep{Runner: r}, nil
	default:
		return nil, fmt.Errorf("unknown process probe %q", kind)
	}
}

// ProcessTable reads the process table directly.
type ProcessTable struct{}

// Running implements Process. Processes that vanish or cannot be inspected while
// the table is being walked are skipped.
func (ProcessTable) Running(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if n == name {
			logger.Debug("[DEBUG] Found %s with pid %d\n", name, p.Pid)
			return true, nil
		}
	}
	return false, nil
}

// Pgrep asks pgrep(1). Exit status 1 means "no match" and is not an error.
type Pgrep struct {
	Runner runner.Runner
}

// Running implements Process.
func (p Pgrep) Running(ctx context.Context, name string) (bool, error) {
	res, err := p.Runner.Run(ctx, runner.Command{Name: "pgrep", Args: []string{name}})
	if err != nil {
		if runner.ExitCode(err) == 1 {
			return false, nil
		}
		return false, fmt.Errorf("look up %s: %w", name, err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}
