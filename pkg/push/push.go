// Package push hands a finished try message to the try server.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-try/pkg/exec"
	"github.com/sirupsen/logrus"
)

// Pusher sends a try message to the try server.
type Pusher interface {
	Push(ctx context.Context, message string) error
}

var (
	// ErrNoCinnabar is returned when pushing from git without git-cinnabar.
	ErrNoCinnabar = errors.New("git-cinnabar is required to push from git to try (https://github.com/glandium/git-cinnabar)")
	// ErrUncommittedChanges is returned when the working copy has changes
	// that would be left out of the push.
	ErrUncommittedChanges = errors.New("working copy has uncommitted changes")
)

// VCS names a version control system.
type VCS string

const (
	VCSAuto VCS = "auto"
	VCSHg   VCS = "hg"
	VCSGit  VCS = "git"
)

// ParseVCS validates a configured VCS name. Empty means auto.
func ParseVCS(s string) (VCS, error) {
	switch VCS(strings.ToLower(s)) {
	case "", VCSAuto:
		return VCSAuto, nil
	case VCSHg:
		return VCSHg, nil
	case VCSGit:
		return VCSGit, nil
	default:
		return "", fmt.Errorf("unknown vcs %q: want auto, hg or git", s)
	}
}

// DetectVCS reports Mercurial when dir has a .hg directory and git
// otherwise.
func DetectVCS(dir string) VCS {
	if info, err := os.Stat(filepath.Join(dir, ".hg")); err == nil && info.IsDir() {
		return VCSHg
	}
	return VCSGit
}

// DefaultTryRemote is the git-cinnabar URL of the try repository.
const DefaultTryRemote = "hg::ssh://hg.mozilla.org/try"

// VCSPusher pushes by committing the message and pushing to try. With
// Mercurial the push-to-try extension does the work; with git the message
// goes into a temporary empty commit that is pushed through git-cinnabar
// and then reset.
type VCSPusher struct {
	VCS      VCS
	Remote   string
	Executor exec.CommandExecutor
	Logger   *logrus.Logger
}

// NewVCSPusher returns a pusher for the repository at dir. VCSAuto is
// resolved by looking at dir.
func NewVCSPusher(dir string, vcs VCS, executor exec.CommandExecutor) *VCSPusher {
	if vcs == "" || vcs == VCSAuto {
		vcs = DetectVCS(dir)
	}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &VCSPusher{
		VCS:      vcs,
		Remote:   DefaultTryRemote,
		Executor: executor,
		Logger:   logger,
	}
}

func (p *VCSPusher) log() *logrus.Logger {
	if p.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.Logger = l
	}
	return p.Logger
}

// Push implements Pusher.
func (p *VCSPusher) Push(ctx context.Context, message string) error {
	p.log().WithFields(logrus.Fields{
		"vcs":     p.VCS,
		"message": message,
	}).Debug("Pushing to try")

	if p.VCS == VCSHg {
		if err := p.Executor.Execute(ctx, "hg", "push-to-try", "-m", message); err != nil {
			return fmt.Errorf("hg push-to-try failed (the push-to-try extension is required): %w", err)
		}
		return nil
	}

	if _, err := p.Executor.LookPath("git-cinnabar"); err != nil {
		return ErrNoCinnabar
	}
	remote := p.Remote
	if remote == "" {
		remote = DefaultTryRemote
	}
	if err := p.git(ctx, "commit", "--allow-empty", "-m", message); err != nil {
		return err
	}
	pushErr := p.git(ctx, "push", remote, "+HEAD:refs/heads/branches/default/tip")
	// The temporary commit is dropped even when the push fails.
	if err := p.git(ctx, "reset", "HEAD~"); err != nil {
		if pushErr != nil {
			return errors.Join(pushErr, err)
		}
		return err
	}
	return pushErr
}

func (p *VCSPusher) git(ctx context.Context, args ...string) error {
	if err := p.Executor.Execute(ctx, "git", args...); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

// HasUncommittedChanges reports whether the working copy has added,
// modified or removed files. Untracked files do not count.
func (p *VCSPusher) HasUncommittedChanges(ctx context.Context) (bool, error) {
	if p.VCS == VCSHg {
		out, err := p.Executor.Output(ctx, "hg", "status")
		if err != nil {
			return false, fmt.Errorf("hg status: %w", err)
		}
		return anyStatus(strings.Split(string(out), "\n"), "AMR"), nil
	}
	out, err := p.Executor.Output(ctx, "git", "status", "-z")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return anyStatus(strings.Split(string(out), "\x00"), "AMD"), nil
}

func anyStatus(entries []string, codes string) bool {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e != "" && strings.ContainsRune(codes, rune(e[0])) {
			return true
		}
	}
	return false
}

// CheckClean returns ErrUncommittedChanges when the working copy is dirty.
func (p *VCSPusher) CheckClean(ctx context.Context) error {
	dirty, err := p.HasUncommittedChanges(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return ErrUncommittedChanges
	}
	return nil
}

// EchoPusher writes the message instead of pushing it.
type EchoPusher struct {
	Out io.Writer
}

// Push implements Pusher.
func (p EchoPusher) Push(_ context.Context, message string) error {
	_, err := fmt.Fprintln(p.Out, message)
	return err
}

// Func adapts a function to Pusher.
type Func func(ctx context.Context, message string) error

// Push implements Pusher.
func (f Func) Push(ctx context.Context, message string) error {
	return f(ctx, message)
}
