package shell

import (
	"os"
	"path/filepath"

	"src.livedoc.dev/pkg/config"
	"src.livedoc.dev/pkg/prog"
)

// Returns the path of the history database, creating its directory if
// necessary. The -db flag takes precedence over the configuration file.
func historyPath(f *prog.Flags, cfg *config.Config) (string, error) {
	db := f.DB
	if db == "" {
		db = cfg.History
	}
	if db == "" {
		p, err := config.DefaultHistoryPath()
		if err != nil {
			return "", err
		}
		db = p
	}
	if err := os.MkdirAll(filepath.Dir(db), 0700); err != nil {
		return "", err
	}
	return db, nil
}
