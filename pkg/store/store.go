// Package store keeps the input history of the console in a bbolt database.
//
// Only typed input is kept. Sessions are never restored from it.
package store

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"src.livedoc.dev/pkg/logutil"
	. "src.livedoc.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Functions that initialize the database, keyed by description. Each file
// defining a bucket registers its initializer here.
var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend for the console.
type DBStore interface {
	Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens or creates the database at path.
func NewStore(path string) (DBStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	st, err := newStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func newStoreFromDB(db *bolt.DB) (DBStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				logger.Errorf("failed to %s: %v", name, err)
				return err
			}
		}
		return nil
	})
	return &dbStore{db}, err
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
