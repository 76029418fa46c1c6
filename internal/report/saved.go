// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"
)

// Saved is the on-disk form of one command's result. A saved compatibility
// or trending run can be reloaded and compared later without re-querying.
type Saved[T any] struct {
	Command string            `json:"command" yaml:"command"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Source  string            `json:"source" yaml:"source"`
	SavedAt time.Time         `json:"saved_at" yaml:"saved_at"`
	Result  T                 `json:"result" yaml:"result"`
}

// formatFor picks the encoding from the file extension: .json is JSON,
// anything else YAML.
func formatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Save writes s to path, creating parent directories as needed. A zero
// SavedAt is set to the current time.
func Save[T any](path string, s Saved[T]) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	var (
		data []byte
		err  error
	)
	if formatFor(path) == FormatJSON {
		data, err = json.MarshalIndent(&s, "", "  ")
	} else {
		data, err = yaml.Marshal(&s)
	}
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a result file written by Save.
func Load[T any](path string) (*Saved[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var s Saved[T]
	if formatFor(path) == FormatJSON {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing result file %s: %w", path, err)
	}
	return &s, nil
}
