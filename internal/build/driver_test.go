package build

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pybuilder/internal/errors"
	"pybuilder/internal/repo"
	"pybuilder/internal/resolve"
	"pybuilder/internal/runner"
	"pybuilder/internal/testutil"
)

type fakeRepo struct {
	tags     resolve.TagSet
	exists   bool
	syncErr  error
	tagsErr  error
	checkout error
	calls    []string
}

func (f *fakeRepo) Exists() bool { return f.exists }

func (f *fakeRepo) Sync(context.Context) error {
	f.calls = append(f.calls, "sync")
	return f.syncErr
}

func (f *fakeRepo) ListTags(context.Context) (resolve.TagSet, error) {
	f.calls = append(f.calls, "tags")
	return f.tags, f.tagsErr
}

func (f *fakeRepo) Checkout(_ context.Context, tag string) error {
	f.calls = append(f.calls, "checkout "+tag)
	return f.checkout
}

var defaultCommands = Commands{
	Configure: []string{"./configure"},
	Make:      []string{"make"},
	Install:   []string{"make", "altinstall"},
	Escalate:  []string{"sudo"},
}

func newDriver(r Repository, run runner.Runner, euid int, opts Options) (*Driver, *bytes.Buffer) {
	d := New(r, run, "/cache/cpython", defaultCommands, opts)
	var out bytes.Buffer
	d.SetOutput(&out)
	d.SetEUID(func() int { return euid })
	return d, &out
}

func knownTags() resolve.TagSet {
	return resolve.NewTagSet("v3.11.0", "v3.11.1", "v3.12.0")
}

func TestRunUnprivileged(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true}
	fake := testutil.NewFakeRunner()
	d, out := newDriver(r, fake, 1000, Options{})

	require.NoError(t, d.Run(context.Background(), "v3.12.0"))

	assert.Equal(t, []string{"sync", "tags", "checkout v3.12.0"}, r.calls)
	assert.Equal(t, []string{"./configure", "make", "sudo make altinstall"}, fake.Lines())
	for _, c := range fake.Commands {
		assert.Equal(t, "/cache/cpython", c.Dir)
	}
	assert.Equal(t, strings.Join([]string{
		"Tag 'v3.12.0' found",
		"\tChecking out v3.12.0",
		"\tConfiguring...",
		"\tRunning 'make'...",
		"Running 'make altinstall' with Sudo",
		"Done!",
	}, "\n")+"\n", out.String())
}

func TestRunPrivileged(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true}
	fake := testutil.NewFakeRunner()
	d, out := newDriver(r, fake, 0, Options{})

	require.NoError(t, d.Run(context.Background(), "v3.12.0"))
	assert.Equal(t, []string{"./configure", "make", "make altinstall"}, fake.Lines())
	assert.Contains(t, out.String(), "\tRunning 'make altinstall'...\n")
	assert.NotContains(t, out.String(), "Sudo")
}

func TestStepsUseExactlyOneInstallForm(t *testing.T) {
	for _, euid := range []int{0, 501} {
		d, _ := newDriver(&fakeRepo{}, testutil.NewFakeRunner(), euid, Options{})
		steps := d.Steps()
		require.Len(t, steps, 3)
		assert.Equal(t, []string{"configure", "compile", "install"}, []string{steps[0].Name, steps[1].Name, steps[2].Name})

		argv := steps[2].Command.Argv()
		if euid == 0 {
			assert.Equal(t, []string{"make", "altinstall"}, argv)
		} else {
			assert.Equal(t, []string{"sudo", "make", "altinstall"}, argv)
		}
		assert.Equal(t, euid == 0, d.Privileged())
	}
}

func TestStepsWithoutEscalationHelper(t *testing.T) {
	d := New(&fakeRepo{}, testutil.NewFakeRunner(), "/src", Commands{
		Configure: []string{"./configure"},
		Make:      []string{"make"},
		Install:   []string{"make", "altinstall"},
	}, Options{})
	d.SetEUID(func() int { return 1000 })

	assert.Equal(t, []string{"make", "altinstall"}, d.Steps()[2].Command.Argv())
}

func TestRunTagNotFound(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true}
	fake := testutil.NewFakeRunner()
	d, out := newDriver(r, fake, 1000, Options{})

	err := d.Run(context.Background(), "v3.11")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTagNotFound))

	var nf *resolve.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"v3.11.0", "v3.11.1"}, nf.Suggestions)

	assert.Equal(t, []string{"sync", "tags"}, r.calls, "nothing is checked out")
	assert.Empty(t, fake.Lines(), "no build step runs")
	assert.Empty(t, out.String())
}

func TestRunStopsAtFailingStep(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true}
	fake := testutil.NewFakeRunner().On("make", testutil.Response{Err: testutil.Fail(2, "make")})
	d, out := newDriver(r, fake, 1000, Options{})

	err := d.Run(context.Background(), "v3.12.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandFailed))

	var ee *runner.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.Code)
	assert.True(t, strings.HasPrefix(err.Error(), "compile: "))

	assert.Equal(t, []string{"./configure", "make"}, fake.Lines())
	assert.NotContains(t, out.String(), "Done!")
}

func TestRunStopsAtSyncFailure(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true, syncErr: testutil.Fail(1, "git", "pull")}
	fake := testutil.NewFakeRunner()
	d, _ := newDriver(r, fake, 1000, Options{})

	require.Error(t, d.Run(context.Background(), "v3.12.0"))
	assert.Equal(t, []string{"sync"}, r.calls)
	assert.Empty(t, fake.Lines())
}

func TestRunStopsAtCheckoutFailure(t *testing.T) {
	r := &fakeRepo{tags: knownTags(), exists: true, checkout: testutil.Fail(1, "git", "checkout")}
	fake := testutil.NewFakeRunner()
	d, _ := newDriver(r, fake, 1000, Options{})

	require.Error(t, d.Run(context.Background(), "v3.12.0"))
	assert.Empty(t, fake.Lines())
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	reader := testutil.NewFakeRunner().On("git tag", testutil.Response{Output: []byte("v3.12.0\n")})
	var printed bytes.Buffer
	pr := &runner.PrintRunner{Out: &printed, Reader: reader}

	m := repo.New(dir, "git@github.com:python/cpython.git", "main", pr)
	m.Out = &bytes.Buffer{}
	d := New(m, pr, dir, defaultCommands, Options{DryRun: true})
	d.SetOutput(&bytes.Buffer{})
	d.SetEUID(func() int { return 1000 })

	require.NoError(t, d.Run(context.Background(), "v3.12.0"))

	want := []string{
		"git checkout main",
		"git pull",
		"git fetch --tags",
		"git checkout v3.12.0",
		"./configure",
		"make",
		"sudo make altinstall",
	}
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(printed.String()), "\n") {
		got = append(got, strings.TrimPrefix(line, "+ ("+dir+") "))
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"git tag"}, reader.Lines(), "only the read-only listing executes")
}

func TestRunDryRunWithoutClone(t *testing.T) {
	r := &fakeRepo{exists: false}
	var printed bytes.Buffer
	d, out := newDriver(r, &runner.PrintRunner{Out: &printed}, 0, Options{DryRun: true})

	require.NoError(t, d.Run(context.Background(), "v3.12.0"))
	assert.Equal(t, []string{"sync", "checkout v3.12.0"}, r.calls)
	assert.NotContains(t, out.String(), "found")
	assert.Equal(t, 3, strings.Count(printed.String(), "\n"))
}
