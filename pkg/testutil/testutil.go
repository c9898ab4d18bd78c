// Package testutil contains common test utilities.
package testutil

import (
	"os"
	"path/filepath"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// TempDirer is a subset of [testing.TB] needed for creating temporary
// directories.
type TempDirer interface {
	Cleanuper
	TempDir() string
}

// Set sets *p to v for the duration of a test.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Setenv sets the value of an environment variable for the duration of a test.
// It returns value.
func Setenv(c Cleanuper, name, value string) string {
	oldValue, existed := os.LookupEnv(name)
	if existed {
		c.Cleanup(func() { os.Setenv(name, oldValue) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
	os.Setenv(name, value)
	return value
}

// TempHome points HOME and the XDG base directories at a fresh temporary
// directory, and returns that directory.
func TempHome(t TempDirer) string {
	home := t.TempDir()
	Setenv(t, "HOME", home)
	Setenv(t, "XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	Setenv(t, "XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	return home
}
