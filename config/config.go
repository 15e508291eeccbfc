// Package config reads pybuilder settings from defaults, an optional
// pybuilder.yaml and PYBUILDER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"pybuilder/internal/logger"
)

// Configuration keys.
const (
	KeyRemote    = "repo.remote"
	KeyDir       = "repo.dir"
	KeyBranch    = "repo.branch"
	KeyConfigure = "build.configure"
	KeyMake      = "build.make"
	KeyInstall   = "build.install"
	KeyEscalate  = "build.escalate"
)

// CacheEnv names the variable selecting the parent directory of the clone.
const CacheEnv = "XDG_CACHE_HOME"

// Settings is the resolved configuration for one run.
type Settings struct {
	Remote string
	// CacheRoot is the parent directory of the clone.
	CacheRoot string
	Dir       string
	Branch    string

	Configure []string
	Make      []string
	Install   []string
	Escalate  []string
}

// RepoPath is where the source tree lives.
func (s Settings) RepoPath() string {
	return filepath.Join(s.CacheRoot, s.Dir)
}

// Init wires the global viper instance.
func Init() {
	setup(viper.GetViper())
}

// Load resolves Settings from the global viper instance.
func Load() (Settings, error) {
	return load(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRemote, "git@github.com:python/cpython.git")
	v.SetDefault(KeyDir, "cpython")
	v.SetDefault(KeyBranch, "main")
	v.SetDefault(KeyConfigure, []string{"./configure"})
	v.SetDefault(KeyMake, []string{"make"})
	v.SetDefault(KeyInstall, []string{"make", "altinstall"})
	v.SetDefault(KeyEscalate, []string{"sudo"})
}

func setup(v *viper.Viper) {
	setDefaults(v)

	v.SetEnvPrefix("pybuilder")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if f := os.Getenv("PYBUILDER_CONFIG"); f != "" {
		v.SetConfigFile(f)
	} else {
		v.SetConfigName("pybuilder") // pybuilder.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "pybuilder"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		logger.Log.Debug("No config file found; using defaults.", "err", err)
		return
	}
	logger.Log.Debug("Using config file", "path", v.ConfigFileUsed())
}

func load(v *viper.Viper) (Settings, error) {
	root := os.Getenv(CacheEnv)
	if root == "" {
		root = "."
	}

	s := Settings{
		Remote:    strings.TrimSpace(v.GetString(KeyRemote)),
		CacheRoot: root,
		Dir:       strings.TrimSpace(v.GetString(KeyDir)),
		Branch:    strings.TrimSpace(v.GetString(KeyBranch)),
		Configure: argv(v, KeyConfigure),
		Make:      argv(v, KeyMake),
		Install:   argv(v, KeyInstall),
		Escalate:  argv(v, KeyEscalate),
	}

	switch {
	case s.Remote == "":
		return s, fmt.Errorf("config: %s is empty", KeyRemote)
	case s.Dir == "":
		return s, fmt.Errorf("config: %s is empty", KeyDir)
	case s.Branch == "":
		return s, fmt.Errorf("config: %s is empty", KeyBranch)
	case len(s.Configure) == 0:
		return s, fmt.Errorf("config: %s is empty", KeyConfigure)
	case len(s.Make) == 0:
		return s, fmt.Errorf("config: %s is empty", KeyMake)
	case len(s.Install) == 0:
		return s, fmt.Errorf("config: %s is empty", KeyInstall)
	}
	return s, nil
}

// argv accepts either a YAML list or a whitespace separated string, which is
// what an environment override produces.
func argv(v *viper.Viper, key string) []string {
	var out []string
	for _, part := range v.GetStringSlice(key) {
		out = append(out, strings.Fields(part)...)
	}
	return out
}
