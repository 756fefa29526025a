// Package jobs loads job description files and turns them into selectable
// job trees.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattsolo1/grove-try/pkg/syntax"
	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a job description that does not have the expected shape.
var ErrMalformed = errors.New("malformed job description")

// MalformedError points at the offending part of a job description.
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformed, e.Path, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

func malformed(path, format string, args ...any) error {
	return &MalformedError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// File is the on-disk job description. Job entries are either bare names or
// {name, options} objects; a name wrapped in parentheses is opt-in.
type File struct {
	Jobs       []map[string]any  `json:"jobs" yaml:"jobs" jsonschema:"description=Ordered list of single-key maps from category name to its options"`
	Initial    map[string]any    `json:"initial,omitempty" yaml:"initial,omitempty" jsonschema:"description=Initial selection per category: all, full, a name, a list, or a nested map"`
	Syntax     map[string]any    `json:"syntax,omitempty" yaml:"syntax,omitempty" jsonschema:"description=Per-category rendering rules"`
	Separators map[string]string `json:"separators,omitempty" yaml:"separators,omitempty" jsonschema:"description=Token separator per category"`
	Defaults   syntax.Defaults   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Format selects the decoder for Parse.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything that is not
// YAML is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and decodes a job description file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job description: %w", err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a job description.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &f, nil
}

// Document is a validated job description.
type Document struct {
	Categories []Category
	Initial    Selection
	Rules      map[string]syntax.Rule
	Separators map[string]string
	Defaults   syntax.Defaults
}

// Document validates the file and converts it to its typed form.
func (f *File) Document() (*Document, error) {
	cats, err := decodeCategories(f.Jobs)
	if err != nil {
		return nil, err
	}
	for i, c := range cats {
		if !syntax.KnownCategory(c.Name) {
			return nil, malformed("jobs["+strconv.Itoa(i)+"]",
				"unknown category %q: want configuration, platforms, tests or talos", c.Name)
		}
	}

	var initial Selection
	if f.Initial != nil {
		initial, err = ExpandInitial(f.Initial)
		if err != nil {
			return nil, fmt.Errorf("%w: initial: %v", ErrMalformed, err)
		}
	}

	rules := make(map[string]syntax.Rule, len(f.Syntax))
	for name, raw := range f.Syntax {
		r, err := syntax.ParseRule(raw)
		if err != nil {
			return nil, malformed("syntax."+name, "%v", err)
		}
		rules[name] = r
	}

	return &Document{
		Categories: cats,
		Initial:    initial,
		Rules:      rules,
		Separators: f.Separators,
		Defaults:   f.Defaults,
	}, nil
}

// Generator returns a syntax generator configured from the document.
func (d *Document) Generator() *syntax.Generator {
	return &syntax.Generator{
		Rules:      d.Rules,
		Separators: d.Separators,
		Defaults:   d.Defaults,
	}
}

// CategoryNames lists the categories in file order.
func (d *Document) CategoryNames() []string {
	names := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		names[i] = c.Name
	}
	return names
}
