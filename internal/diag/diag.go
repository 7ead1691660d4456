// Package diag provides a per-run identifier and a crash-dump writer for
// --debug runs, standing in for the Python source's pdb.post_mortem
// session: a batch Go CLI has no interactive debugger to drop into, so a
// fatal error instead leaves behind a file with enough context to diagnose
// offline.
//
// The run-id allocation pattern (sync.Once guarding a single generated
// identifier for the process lifetime) is adapted from the teacher's
// internal/logger.GetSessionID.
package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ajsharma/tlogcompile/internal/event"
)

var (
	runID     string
	runIDOnce sync.Once
)

// RunID returns the unique identifier for this compiler invocation. It is
// generated once and stable for the process lifetime.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// CrashDump is the content written to disk when a fatal error aborts the
// fold under --debug.
type CrashDump struct {
	RunID      string        `json:"run_id"`
	Line       int           `json:"line"`
	Error      string        `json:"error"`
	RecentTail []event.Event `json:"recent_event_history"`
}

// WriteCrashDump writes dump to "<dir>/crash-<runid>.json" and returns the
// path written.
func WriteCrashDump(dir string, line int, errMsg string, tail []event.Event) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create crash dump directory: %w", err)
	}

	dump := CrashDump{
		RunID:      RunID(),
		Line:       line,
		Error:      errMsg,
		RecentTail: tail,
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal crash dump: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash-%s.json", RunID()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write crash dump: %w", err)
	}
	return path, nil
}
