package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// InitRepo creates a git repository at dir with one commit and the given
// tags. Tags starting with "a:" are created annotated (without the prefix).
func InitRepo(t *testing.T, dir string, tags ...string) *git.Repository {
	t.Helper()

	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.rst"), []byte("This is Python\n"), 0o600))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.rst")
	require.NoError(t, err)

	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Unix(1700000000, 0)}
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: sig})
	require.NoError(t, err)

	for _, tag := range tags {
		if len(tag) > 2 && tag[:2] == "a:" {
			_, err = r.CreateTag(tag[2:], hash, &git.CreateTagOptions{Tagger: sig, Message: tag[2:]})
		} else {
			_, err = r.CreateTag(tag, hash, nil)
		}
		require.NoError(t, err)
	}
	return r
}
