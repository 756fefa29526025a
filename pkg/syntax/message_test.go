package syntax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestString(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "empty",
			req:  Request{},
			want: "-p none",
		},
		{
			name: "full",
			req: Request{
				Builds:    "do",
				Platforms: "linux,win32",
				Tests:     "reftest",
				Tags:      []string{"a", "b"},
				ExtraArgs: []string{"--rebuild", "2"},
				Paths:     []string{"b/x", "a/y", "a/y"},
			},
			want: "-b do -p linux,win32 -u reftest --tag a --tag b --rebuild 2 --try-test-paths a/y b/x",
		},
		{
			name: "talos",
			req:  Request{Builds: "o", Platforms: "all", Tests: "xpcshell", Talos: "none"},
			want: "-b o -p all -u xpcshell -t none",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.req.String())
			assert.Equal(t, "try: "+tc.want, tc.req.Message())
		})
	}
}

func TestParseMessage(t *testing.T) {
	msg := "Bug 1234 - Fix the thing\n\n" +
		"try: -b do -p all -u reftest,mochitest-1[Windows 7,Linux] --setenv FOO=1 " +
		"--try-test-paths reftest:layout/reftests/a crashtest:dom/b reftest:layout/c -t none\n"

	m, err := ParseMessage(msg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"-b", "do", "-p", "all", "-u", "reftest,mochitest-1[Windows 7,Linux]",
		"--setenv", "FOO=1", "-t", "none",
	}, m.Args)
	assert.Equal(t, map[string][]string{
		"reftest":   {"layout/reftests/a", "layout/c"},
		"crashtest": {"dom/b"},
	}, m.TestPaths)
}

func TestParseMessageQuoted(t *testing.T) {
	m, err := ParseMessage(`"try: -b o -p linux"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"-b", "o", "-p", "linux"}, m.Args)
	assert.Empty(t, m.TestPaths)
}

func TestParseMessageErrors(t *testing.T) {
	_, err := ParseMessage("Bug 1 - no syntax here")
	assert.True(t, errors.Is(err, ErrNoTrySyntax))

	_, err = ParseMessage("try: ")
	assert.True(t, errors.Is(err, ErrNoTrySyntax))

	_, err = ParseMessage("try: -b d --try-test-paths nocolon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nocolon")
}

func TestHarnessArgs(t *testing.T) {
	m, err := ParseMessage("try: -b do -p all --setenv A=1 --setenv B=2 --e10s --timeout 30 -t none " +
		"--try-test-paths reftest:layout/a")
	require.NoError(t, err)

	known := []HarnessArg{
		{Name: "setenv", Kind: ArgAppend},
		{Name: "e10s", Kind: ArgBool},
		{Name: "timeout", Kind: ArgString},
		{Name: "headless", Kind: ArgBool},
	}

	args, err := m.HarnessArgs(known)
	require.NoError(t, err)
	assert.Equal(t, []string{"--setenv=A=1", "--setenv=B=2", "--e10s", "--timeout=30"}, args)

	args, tests, err := m.TryArgs("reftest", known)
	require.NoError(t, err)
	assert.Equal(t, []string{"--setenv=A=1", "--setenv=B=2", "--e10s", "--timeout=30",
		"--this-chunk=1", "--total-chunks=1"}, args)
	assert.Equal(t, []string{"layout/a"}, tests)

	_, tests, err = m.TryArgs("crashtest", known)
	require.NoError(t, err)
	assert.Empty(t, tests)
}
