package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv(CacheEnv, "")

	v := viper.New()
	setDefaults(v)
	s, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, "git@github.com:python/cpython.git", s.Remote)
	assert.Equal(t, "main", s.Branch)
	assert.Equal(t, []string{"./configure"}, s.Configure)
	assert.Equal(t, []string{"make"}, s.Make)
	assert.Equal(t, []string{"make", "altinstall"}, s.Install)
	assert.Equal(t, []string{"sudo"}, s.Escalate)
	assert.Equal(t, "cpython", s.RepoPath())
}

func TestCacheRootFromEnv(t *testing.T) {
	t.Setenv(CacheEnv, "/var/cache/me")

	v := viper.New()
	setDefaults(v)
	s, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/me/cpython", s.RepoPath())
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pybuilder.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
repo:
  remote: https://github.com/python/cpython.git
  dir: cpython-src
build:
  configure: ["./configure", "--enable-optimizations"]
  escalate: []
`), 0o600))

	t.Setenv("PYBUILDER_CONFIG", file)
	t.Setenv("PYBUILDER_BUILD_MAKE", "make -j8")
	t.Setenv(CacheEnv, dir)

	v := viper.New()
	setup(v)
	s, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/python/cpython.git", s.Remote)
	assert.Equal(t, filepath.Join(dir, "cpython-src"), s.RepoPath())
	assert.Equal(t, []string{"./configure", "--enable-optimizations"}, s.Configure)
	assert.Equal(t, []string{"make", "-j8"}, s.Make)
	assert.Empty(t, s.Escalate)
}

func TestEmptyValueRejected(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set(KeyBranch, " ")
	_, err := load(v)
	assert.ErrorContains(t, err, KeyBranch)
}
