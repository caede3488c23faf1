package state

import (
	"encoding/json" // JSON encoding of the journal file
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"runapp/internal/logger"
)

// RunRecord describes one runapp invocation.
type RunRecord struct {
	ID         string    `json:"id"`                   // Random run identifier, printed in debug output
	Mode       string    `json:"mode"`                 // local, code, docker, default, clean or drop
	App        string    `json:"app"`                  // Registration name the run operated on
	BuildGoal  string    `json:"build_goal,omitempty"` // install or package; empty when no build ran
	DBAction   string    `json:"db_action,omitempty"`  // Corrective action the lifecycle controller took
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  bool      `json:"succeeded"`
	Error      string    `json:"error,omitempty"`
}

// NewRunRecord starts a record for mode with a fresh identifier.
func NewRunRecord(mode, app string, now time.Time) RunRecord {
	return RunRecord{ID: uuid.NewString(), Mode: mode, App: app, StartedAt: now}
}

// Finish stamps the outcome.
func (r *RunRecord) Finish(now time.Time, err error) {
	r.FinishedAt = now
	r.Succeeded = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}

// Journal is the persisted history kept under .runapp/state.json.
// It is informational only: reconciliation always trusts the probes, never the journal.
type Journal struct {
	LastRun    *RunRecord            `json:"last_run,omitempty"`
	LastByMode map[string]*RunRecord `json:"last_by_mode"`
}

// Record stores r as the latest run overall and for its mode.
func (j *Journal) Record(r RunRecord) {
	if j.LastByMode == nil {
		j.LastByMode = make(map[string]*RunRecord)
	}
	rec := r
	j.LastRun = &rec
	j.LastByMode[r.Mode] = &rec
}

// LoadJournal reads the journal at path.
// A missing or unreadable file yields an empty journal rather than an error.
func LoadJournal(fs afero.Fs, path string) *Journal {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return &Journal{LastByMode: make(map[string]*RunRecord)}
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		logger.Warn("[WARN] Ignoring corrupt run journal %s: %v\n", path, err)
		return &Journal{LastByMode: make(map[string]*RunRecord)}
	}
	if j.LastByMode == nil {
		j.LastByMode = make(map[string]*RunRecord)
	}
	return &j
}

// SaveJournal writes j to path as indented JSON.
// Failures are logged and not propagated: losing the journal never fails a run.
func SaveJournal(fs afero.Fs, path string, j *Journal) {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal run journal: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing run journal to %s\n", path)

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Error("[ERROR] Failed to create journal directory for %s: %v\n", path, err)
		return
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		logger.Error("[ERROR] Failed to write run journal %s: %v\n", path, err)
	}
}
