package repo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pybuilder/internal/errors"
	"pybuilder/internal/logger"
	"pybuilder/internal/resolve"
	"pybuilder/internal/runner"
)

// Manager owns the clone at Path.
type Manager struct {
	Path   string
	Remote string
	Branch string

	// Out receives progress lines.
	Out io.Writer

	run runner.Runner
}

// New returns a manager for the clone at path.
func New(path, remote, branch string, r runner.Runner) *Manager {
	return &Manager{Path: path, Remote: remote, Branch: branch, Out: os.Stdout, run: r}
}

// Exists reports whether the repository directory is present.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.Path)
	return err == nil && info.IsDir()
}

func (m *Manager) git(args ...string) runner.Command {
	return runner.Cmd(m.Path, append([]string{"git"}, args...)...)
}

// EnsurePresent checks the clone exists. When it is missing and autoClone is
// set, it clones once and checks again.
func (m *Manager) EnsurePresent(ctx context.Context, autoClone bool) error {
	if m.Exists() {
		return nil
	}
	if !autoClone {
		return m.notFound()
	}

	if err := m.Clone(ctx); err != nil {
		return err
	}
	if runner.IsDryRun(m.run) {
		return nil
	}
	if !m.Exists() {
		return m.notFound()
	}
	return nil
}

func (m *Manager) notFound() error {
	return errors.ErrRepoNotFound.Wrap(
		fmt.Errorf("cannot find CPython repository at %s, pass '--clone' to download", m.Path))
}

// Clone clones Remote into Path, creating the parent directory when needed.
func (m *Manager) Clone(ctx context.Context) error {
	parent := filepath.Dir(m.Path)
	if !runner.IsDryRun(m.run) {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", parent, err)
		}
	}

	logger.Log.Info("Cloning repository", "remote", m.Remote, "into", m.Path)
	c := runner.Cmd(parent, "git", "clone", m.Remote, filepath.Base(m.Path))
	if err := m.run.Run(ctx, c); err != nil {
		return fmt.Errorf("clone %s: %w", m.Remote, err)
	}
	return nil
}

// Sync checks out the default branch and pulls it.
func (m *Manager) Sync(ctx context.Context) error {
	if err := m.run.Run(ctx, m.git("checkout", m.Branch).Quiet()); err != nil {
		return fmt.Errorf("checkout %s: %w", m.Branch, err)
	}

	pull := m.git("pull")
	pull.QuietStdout = true
	if err := m.run.Run(ctx, pull); err != nil {
		return fmt.Errorf("pull %s: %w", m.Branch, err)
	}
	return nil
}

// ListTags fetches tags from the remote and returns every local tag.
func (m *Manager) ListTags(ctx context.Context) (resolve.TagSet, error) {
	fmt.Fprintln(m.Out, "Pulling latest tags...")
	if err := m.FetchTags(ctx, false); err != nil {
		return nil, err
	}

	out, err := m.run.Output(ctx, m.git("tag"))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return ParseTagList(out), nil
}

// FetchTags updates the clone's tags from the remote.
func (m *Manager) FetchTags(ctx context.Context, quiet bool) error {
	c := m.git("fetch", "--tags")
	if quiet {
		c = c.Quiet()
	}
	if err := m.run.Run(ctx, c); err != nil {
		return fmt.Errorf("fetch tags: %w", err)
	}
	return nil
}

// ParseTagList turns `git tag` output into a set. Blank lines are dropped.
func ParseTagList(out []byte) resolve.TagSet {
	tags := resolve.NewTagSet()
	for _, line := range strings.Split(string(out), "\n") {
		tags.Add(strings.TrimSpace(line))
	}
	return tags
}

// Checkout moves the working tree to tag.
func (m *Manager) Checkout(ctx context.Context, tag string) error {
	if err := m.run.Run(ctx, m.git("checkout", tag).Quiet()); err != nil {
		return fmt.Errorf("checkout %s: %w", tag, err)
	}
	return nil
}

// RemoteTags lists the tags of remote without a local clone, using
// `git ls-remote --tags`. Annotated tag dereferences ("^{}") are folded into
// their tag.
func RemoteTags(ctx context.Context, r runner.Runner, remote string) (resolve.TagSet, error) {
	out, err := r.Output(ctx, runner.Cmd("", "git", "ls-remote", "--tags", remote))
	if err != nil {
		return nil, fmt.Errorf("git ls-remote: %w", err)
	}

	tags := resolve.NewTagSet()
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}

		ref := fields[1]
		const prefix = "refs/tags/"
		if !strings.HasPrefix(ref, prefix) {
			continue
		}
		tags.Add(strings.TrimSuffix(strings.TrimPrefix(ref, prefix), "^{}"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan git output: %w", err)
	}
	return tags, nil
}
