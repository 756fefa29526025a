// Package state remembers the last try push of a repository so the next
// chooser session can start from it.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the state file inside the repository's .grove directory.
const FileName = "try-state.yml"

// State is the last pushed selection.
type State struct {
	Message   string         `yaml:"message,omitempty" json:"message,omitempty"`
	JobsFile  string         `yaml:"jobs_file,omitempty" json:"jobs_file,omitempty"`
	Selection map[string]any `yaml:"selection,omitempty" json:"selection,omitempty"`
	PushedAt  time.Time      `yaml:"pushed_at,omitempty" json:"pushed_at"`
}

// IsZero reports whether nothing was recorded yet.
func (s *State) IsZero() bool {
	return s.Message == "" && s.Selection == nil
}

// repoRoot walks up from dir to the nearest directory holding .git or .hg.
// Without one, dir itself is used.
func repoRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	for cur := abs; ; {
		for _, marker := range []string{".git", ".hg"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}

// Path returns the state file location for the repository containing dir.
func Path(dir string) string {
	return filepath.Join(repoRoot(dir), ".grove", FileName)
}

// Load reads the state for the repository containing dir. A missing file
// yields an empty state.
func Load(dir string) (*State, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return &s, nil
}

// Save writes s for the repository containing dir.
func Save(dir string, s *State) error {
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Record stores a finished push.
func Record(dir, jobsFile, message string, selection map[string]any) error {
	return Save(dir, &State{
		Message:   message,
		JobsFile:  jobsFile,
		Selection: selection,
		PushedAt:  time.Now().UTC().Truncate(time.Second),
	})
}
