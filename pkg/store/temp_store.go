package store

import (
	"path/filepath"

	"src.livedoc.dev/pkg/must"
	"src.livedoc.dev/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file. The Store is
// closed when the test finishes.
func MustTempStore(c testutil.TempDirer) DBStore {
	st := must.OK1(NewStore(filepath.Join(c.TempDir(), "history.db")))
	c.Cleanup(func() { st.Close() })
	return st
}
