package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/haiku/pkg"
)

// baseConfig is the base name of the configuration file and the key of its
// flag section.
const baseConfig = "config"

// Environment variables overriding the runtime directories.
const (
	envConfigDir = "HAIKU_CONFIG_DIR"
	envCacheDir  = "HAIKU_CACHE_DIR"
)

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// basePrefix names the runtime directories after the executable, with the
// dlv debugger's default output renamed to [pkg.Name] and leading dots
// removed.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, pkg.Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir returns the directory named by the environment variable env, or
// basePrefix under the directory reported by user. Without a user
// directory it falls back to fallback under the home directory, then to the
// working directory.
func userDir(env string, user func() (string, error), fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}

	dir, err := user()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(envConfigDir, os.UserConfigDir, ".config")
})

// cacheDir returns the cache directory path used for history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(envCacheDir, os.UserCacheDir, ".cache")
})

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
