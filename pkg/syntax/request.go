package syntax

import (
	"sort"
	"strings"
)

// Prefix starts every try line.
const Prefix = "try: "

// Request is a rendered try request.
type Request struct {
	Builds    string   `json:"builds"`
	Platforms string   `json:"platforms"`
	Tests     string   `json:"tests,omitempty"`
	Talos     string   `json:"talos,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ExtraArgs []string `json:"extra_args,omitempty"`
	Paths     []string `json:"paths,omitempty"`
}

// String renders the request in the fixed order builds, platforms, tests,
// talos, tags, extra arguments, test paths. An empty platform list renders
// as "none".
func (r Request) String() string {
	var parts []string
	if r.Builds != "" {
		parts = append(parts, "-b", r.Builds)
	}
	platforms := r.Platforms
	if platforms == "" {
		platforms = "none"
	}
	parts = append(parts, "-p", platforms)
	if r.Tests != "" {
		parts = append(parts, "-u", r.Tests)
	}
	if r.Talos != "" {
		parts = append(parts, "-t", r.Talos)
	}
	for _, tag := range r.Tags {
		parts = append(parts, "--tag", tag)
	}
	for _, arg := range r.ExtraArgs {
		if arg != "" {
			parts = append(parts, arg)
		}
	}
	if paths := uniqueSorted(r.Paths); len(paths) > 0 {
		parts = append(parts, "--try-test-paths")
		parts = append(parts, paths...)
	}
	return strings.Join(parts, " ")
}

// Message returns the request as a "try: ..." line.
func (r Request) Message() string {
	return Prefix + r.String()
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
