package syntax

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

// ErrNoTrySyntax is returned when a message carries no "try: " line.
var ErrNoTrySyntax = errors.New("try syntax not found")

// Tokens are whitespace separated, except inside [filter expressions].
var tokenRE = regexp.MustCompile(`(?:\[.*?\]|\S)+`)

const testPathsFlag = "--try-test-paths"

// ArgKind is how a harness argument is declared and echoed.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgBool
	ArgAppend
)

// HarnessArg is a try argument that is forwarded to a test harness.
type HarnessArg struct {
	Name string
	Kind ArgKind
}

// Message is the parsed try line of a commit message.
type Message struct {
	// Args holds every token after "try: " except the test paths clause.
	Args []string
	// TestPaths groups "--try-test-paths suite:path" entries by suite.
	TestPaths map[string][]string
}

// ParseMessage finds the first try line in msg and tokenizes it. Lines
// wrapped in double quotes are unwrapped first.
func ParseMessage(msg string) (*Message, error) {
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, Prefix) {
			continue
		}
		if len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) {
			line = line[1 : len(line)-1]
		}
		parts := strings.SplitN(strings.TrimSpace(line), Prefix, 2)
		if len(parts) < 2 {
			continue
		}
		tokens := tokenRE.FindAllString(parts[1], -1)
		if len(tokens) == 0 {
			return nil, ErrNoTrySyntax
		}
		return newMessage(tokens)
	}
	return nil, ErrNoTrySyntax
}

func newMessage(tokens []string) (*Message, error) {
	m := &Message{TestPaths: map[string][]string{}}
	for i := 0; i < len(tokens); i++ {
		if tokens[i] != testPathsFlag {
			m.Args = append(m.Args, tokens[i])
			continue
		}
		for i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			i++
			suite, path, ok := strings.Cut(tokens[i], ":")
			if !ok {
				return nil, fmt.Errorf("malformed test path %q: expected suite:path", tokens[i])
			}
			m.TestPaths[suite] = append(m.TestPaths[suite], path)
		}
	}
	return m, nil
}

// HarnessArgs extracts the known arguments from the try line and renders
// them as harness flags ("--name", "--name=value"). Unknown try arguments
// are ignored.
func (m *Message) HarnessArgs(known []HarnessArg) ([]string, error) {
	fs := pflag.NewFlagSet("try", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)

	values := make([]any, len(known))
	for i, k := range known {
		switch k.Kind {
		case ArgBool:
			values[i] = fs.Bool(k.Name, false, "")
		case ArgAppend:
			values[i] = fs.StringArray(k.Name, nil, "")
		default:
			values[i] = fs.String(k.Name, "", "")
		}
	}
	if err := fs.Parse(m.Args); err != nil {
		return nil, fmt.Errorf("parsing try arguments: %w", err)
	}

	var out []string
	for i, k := range known {
		label := "--" + k.Name
		switch v := values[i].(type) {
		case *bool:
			if *v {
				out = append(out, label)
			}
		case *[]string:
			for _, el := range *v {
				out = append(out, label+"="+el)
			}
		case *string:
			if *v != "" {
				out = append(out, label+"="+*v)
			}
		}
	}
	return out, nil
}

// TryArgs returns the harness arguments and test list for one suite. When
// test paths were given for the suite, chunking is disabled so every path
// runs in a single job.
func (m *Message) TryArgs(suite string, known []HarnessArg) (args, tests []string, err error) {
	args, err = m.HarnessArgs(known)
	if err != nil {
		return nil, nil, err
	}
	if paths := m.TestPaths[suite]; len(paths) > 0 {
		args = append(args, "--this-chunk=1", "--total-chunks=1")
		tests = append(tests, paths...)
	}
	return args, tests, nil
}
