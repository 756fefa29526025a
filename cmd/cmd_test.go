package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-try/pkg/jobs"
	"github.com/mattsolo1/grove-try/pkg/state"
	"github.com/mattsolo1/grove-try/pkg/syntax"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobsYAML = `
jobs:
  - configuration: [debug, opt]
  - platforms: [linux, (linux64), windows]
  - tests:
      - name: mochitest
        options: [m1, m2, (mj)]
      - reftest
initial:
  configuration: [opt]
  platforms: all
  tests:
    - mochitest: m1
syntax:
  configuration: {all: do, debug: d, opt: o}
  platforms: {all: all}
  tests:
    mochitest: {all-default: mochitests}
separators:
  configuration: ""
`

func init() {
	color.NoColor = true
}

func writeJobs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobsYAML), 0o644))
	return path
}

func newTestCmd(t *testing.T, name string, jsonOutput bool) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := cli.NewStandardCommand(name, "test")
	if jsonOutput {
		require.NoError(t, c.Flags().Set("json", "true"))
	}
	var buf bytes.Buffer
	c.SetOut(&buf)
	return c, &buf
}

func TestSyntaxCommand(t *testing.T) {
	path := writeJobs(t)

	tests := []struct {
		name string
		sel  selectionFlags
		want string
	}{
		{
			name: "initial selection",
			sel:  selectionFlags{jobsFile: path},
			want: "try: -b o -p linux,windows -u m1",
		},
		{
			name: "choices replace initial",
			sel: selectionFlags{
				jobsFile:  path,
				build:     "do",
				platforms: []string{"linux64"},
				tests:     []string{"all"},
				tags:      []string{"dom"},
			},
			want: "try: -b do -p linux64 -u mochitests,reftest --tag dom",
		},
		{
			name: "filters prune jobs",
			sel:  selectionFlags{jobsFile: path, filters: []string{"configuration/*", "platforms/*", "reftest"}},
			want: "try: -b o -p linux,windows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCmd(t, "syntax", false)
			require.NoError(t, runSyntax(c, &tt.sel))
			assert.Equal(t, tt.want, strings.TrimSpace(out.String()))
		})
	}
}

func TestSyntaxCommandJSON(t *testing.T) {
	c, out := newTestCmd(t, "syntax", true)
	require.NoError(t, runSyntax(c, &selectionFlags{jobsFile: writeJobs(t)}))

	var got struct {
		Message string         `json:"message"`
		Request syntax.Request `json:"request"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "try: -b o -p linux,windows -u m1", got.Message)
	assert.Equal(t, "linux,windows", got.Request.Platforms)
}

func TestSyntaxCommandBuiltinTable(t *testing.T) {
	c, out := newTestCmd(t, "syntax", false)
	require.NoError(t, runSyntax(c, &selectionFlags{build: "o", platforms: []string{"linux64"}, tests: []string{"xpcshell"}}))
	assert.Equal(t, "try: -b o -p linux64 -u xpcshell", strings.TrimSpace(out.String()))
}

func TestSyntaxCommandErrors(t *testing.T) {
	c, _ := newTestCmd(t, "syntax", false)
	err := runSyntax(c, &selectionFlags{jobsFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"jobs": [{"a": 1}]}`), 0o644))
	err = runSyntax(c, &selectionFlags{jobsFile: bad})
	assert.ErrorIs(t, err, jobs.ErrMalformed)

	err = runSyntax(c, &selectionFlags{filters: []string{"[oops"}})
	assert.Error(t, err)
}

func TestSyntaxCommandLast(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	t.Chdir(dir)
	path := writeJobs(t)

	c, out := newTestCmd(t, "syntax", false)
	err := runSyntax(c, &selectionFlags{jobsFile: path, last: true})
	assert.ErrorContains(t, err, "no previous push")

	require.NoError(t, state.Record(dir, path, "try: -p linux64",
		map[string]any{"platforms": map[string]any{"linux64": "full"}}))
	require.NoError(t, runSyntax(c, &selectionFlags{jobsFile: path, last: true}))
	assert.Equal(t, "try: -p linux64", strings.TrimSpace(out.String()))
}

func TestJobsCommandTree(t *testing.T) {
	c, out := newTestCmd(t, "jobs", false)
	require.NoError(t, runJobs(c, &selectionFlags{jobsFile: writeJobs(t)}, "tree"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"[/] configuration",
		"  [ ] debug",
		"  [*] opt",
		"[X] platforms",
		"  [*] linux",
		"  [ ] (linux64)",
		"  [*] windows",
		"[/] tests",
		"  [/] mochitest",
		"    [*] m1",
		"    [ ] m2",
		"    [ ] (mj)",
		"  [ ] reftest",
	}, lines)
}

func TestJobsCommandYAMLRoundTrip(t *testing.T) {
	c, out := newTestCmd(t, "jobs", false)
	require.NoError(t, runJobs(c, &selectionFlags{jobsFile: writeJobs(t), platforms: []string{"linux64"}}, "yaml"))

	f, err := jobs.Parse(out.Bytes(), jobs.FormatYAML)
	require.NoError(t, err)
	tr, doc, err := f.BuildTree()
	require.NoError(t, err)
	jobs.ApplyInitial(tr, doc.Initial)
	assert.Equal(t, "try: -b o -p linux64 -u m1", doc.Generator().Message(tr))

	c, _ = newTestCmd(t, "jobs", false)
	assert.Error(t, runJobs(c, &selectionFlags{}, "xml"))
}

func TestParseCommand(t *testing.T) {
	msg := "Bug 1 - fix\n\ntry: -b o -p linux -u mochitest --tag dom --e10s --try-test-paths mochitest:dom/a mochitest:dom/b reftest:x"

	c, out := newTestCmd(t, "parse", false)
	require.NoError(t, runParse(c, msg, nil, ""))
	assert.Equal(t, "Harness args: --tag=dom --e10s\nmochitest: dom/a dom/b\nreftest: x\n", out.String())

	c, out = newTestCmd(t, "parse", true)
	require.NoError(t, runParse(c, msg, []string{"tag:append"}, "mochitest"))
	var res parseResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, []string{"--tag=dom", "--this-chunk=1", "--total-chunks=1"}, res.HarnessArgs)
	assert.Equal(t, []string{"dom/a", "dom/b"}, res.Tests)

	c, _ = newTestCmd(t, "parse", false)
	assert.ErrorIs(t, runParse(c, "no syntax here", nil, ""), syntax.ErrNoTrySyntax)
	assert.Error(t, runParse(c, msg, []string{"tag:list"}, ""))
}

func TestParseHarnessArg(t *testing.T) {
	tests := []struct {
		def     string
		want    syntax.HarnessArg
		wantErr bool
	}{
		{def: "setenv:append", want: syntax.HarnessArg{Name: "setenv", Kind: syntax.ArgAppend}},
		{def: "--e10s:bool", want: syntax.HarnessArg{Name: "e10s", Kind: syntax.ArgBool}},
		{def: "total-chunks", want: syntax.HarnessArg{Name: "total-chunks", Kind: syntax.ArgString}},
		{def: ":bool", wantErr: true},
		{def: "x:int", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			got, err := parseHarnessArg(tt.def)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutotryCommand(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "tests.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
tests:
  - path: dom/tests/mochitest/test_a.html
    flavor: mochitest
  - path: xpcom/tests/unit/test_x.js
    flavor: xpcshell
`), 0o644))

	c, out := newTestCmd(t, "autotry", false)
	var logs bytes.Buffer
	c.SetErr(&logs)
	opts := &autotryOptions{builds: "o", platforms: []string{"linux64"}, manifest: manifest, verbose: true}
	require.NoError(t, runAutotry(c, []string{"dom", "xpcom/**/*.js"}, opts))
	assert.Equal(t,
		"Paths by flavor:\n"+
			"  mochitest: dom\n"+
			"  xpcshell: xpcom/tests/unit\n"+
			"try: -b o -p linux64 -u mochitest-1,mochitest-e10s-1,xpcshell -t none --try-test-paths mochitest:dom xpcshell:xpcom/tests/unit\n",
		out.String())
	assert.Contains(t, logs.String(), "Resolved test paths")

	c, _ = newTestCmd(t, "autotry", false)
	logs.Reset()
	c.SetErr(&logs)
	require.NoError(t, runAutotry(c, []string{"dom"}, &autotryOptions{platforms: []string{"linux64"}, manifest: manifest}))
	assert.Empty(t, logs.String())

	c, _ = newTestCmd(t, "autotry", false)
	err := runAutotry(c, []string{"dom"}, &autotryOptions{platforms: []string{"linux"}})
	assert.ErrorContains(t, err, "manifest")

	c, _ = newTestCmd(t, "autotry", false)
	err = runAutotry(c, nil, &autotryOptions{platforms: []string{"linux"}})
	assert.Error(t, err)
}

func TestTryConfigExpandPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := &TryConfig{JobsFile: "~/jobs.yaml", Manifest: "/abs/tests.yaml"}
	require.NoError(t, cfg.expandPaths())
	assert.Equal(t, filepath.Join(home, "jobs.yaml"), cfg.JobsFile)
	assert.Equal(t, "/abs/tests.yaml", cfg.Manifest)

	assert.Equal(t, "flag", pick("flag", "configured"))
	assert.Equal(t, "configured", pick("", "configured"))
}

func TestLastCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hg"), 0o755))

	c, out := newTestCmd(t, "last", false)
	require.NoError(t, runLast(c, dir, false))
	assert.Equal(t, "No push recorded\n", out.String())

	require.NoError(t, state.Record(dir, "", "try: -b o -p linux64",
		map[string]any{"platforms": map[string]any{"linux64": "full"}}))

	c, out = newTestCmd(t, "last", false)
	require.NoError(t, runLast(c, dir, false))
	assert.Contains(t, out.String(), "Message:   try: -b o -p linux64\n")
	assert.Contains(t, out.String(), "Jobs:      built-in\n")
	assert.Contains(t, out.String(), "Selection: {platforms:{linux64:full}}\n")

	c, out = newTestCmd(t, "last", true)
	require.NoError(t, runLast(c, dir, false))
	var st state.State
	require.NoError(t, json.Unmarshal(out.Bytes(), &st))
	assert.Equal(t, "try: -b o -p linux64", st.Message)

	c, _ = newTestCmd(t, "last", false)
	require.NoError(t, runLast(c, dir, true))
	assert.NoFileExists(t, state.Path(dir))
	require.NoError(t, runLast(c, dir, true), "clearing twice is fine")
}
