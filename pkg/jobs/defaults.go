package jobs

import (
	_ "embed"
	"fmt"
)

//go:embed trychooser.json
var defaultTable []byte

// Default returns the built-in job description.
func Default() (*File, error) {
	f, err := Parse(defaultTable, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("built-in job table: %w", err)
	}
	return f, nil
}

// LoadOrDefault loads path, or the built-in table when path is empty.
func LoadOrDefault(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
