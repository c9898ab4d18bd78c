// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoMatchingEntry is the error returned when a query for a history entry
// completes with no result.
var ErrNoMatchingEntry = errors.New("no matching history entry")

// Store is an interface satisfied by the storage service.
type Store interface {
	NextSeq() (int, error)
	AddEntry(text string) (int, error)
	DelEntry(seq int) error
	Entry(seq int) (string, error)
	Entries(from, upto int) ([]Entry, error)
	LastEntries(n int) ([]Entry, error)
	NextEntry(from int, prefix string) (Entry, error)
	PrevEntry(upto int, prefix string) (Entry, error)
}

// Entry is an entry in the input history.
type Entry struct {
	Text string
	Seq  int
}
