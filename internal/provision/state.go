package provision

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"canvass/internal/fileutil"
)

// stateFileName sits next to the queue database in the log directory.
const stateFileName = "provision.json"

// State records what a converge run installed, so later runs can tell
// tool-managed models apart from operator-managed ones.
type State struct {
	UpdatedAt time.Time `json:"updated_at"`
	// Models lists the Ollama models this tool installed or verified.
	Models []string `json:"models"`
	// Binaries lists the binaries that resolved on PATH at converge time.
	Binaries []string `json:"binaries"`
}

// StatePath derives the state file location from the log directory.
func StatePath(logDir string) string {
	if logDir == "" {
		return ""
	}
	return filepath.Join(logDir, stateFileName)
}

// LoadState reads a previous converge record. A missing file yields an empty
// state so first runs need no special casing.
func LoadState(path string) (State, error) {
	if path == "" {
		return State{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read provision state: %w", err)
	}
	if len(data) == 0 {
		return State{}, nil
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parse provision state: %w", err)
	}
	return state, nil
}

// saveState persists the converge record atomically.
func saveState(path string, state State) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode provision state: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write provision state: %w", err)
	}
	return nil
}

// contains reports membership under model-name equality rules.
func contains(names []string, candidate string, match func(a, b string) bool) bool {
	for _, name := range names {
		if match(name, candidate) {
			return true
		}
	}
	return false
}
