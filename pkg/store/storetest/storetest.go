// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	. "src.livedoc.dev/pkg/store/storedefs"
)

// TestHistory tests the input history functionality of a Store.
func TestHistory(t *testing.T, s Store) {
	texts := []string{"x = 1", "x + 1", "print(x)", "x * 2"}

	seq, err := s.NextSeq()
	if seq != 1 || err != nil {
		t.Errorf("NextSeq() = (%d, %v), want (1, nil)", seq, err)
	}
	for i, text := range texts {
		seq, err := s.AddEntry(text)
		if seq != i+1 || err != nil {
			t.Errorf("AddEntry(%q) = (%d, %v), want (%d, nil)", text, seq, err, i+1)
		}
	}
	seq, err = s.NextSeq()
	if seq != 5 || err != nil {
		t.Errorf("NextSeq() = (%d, %v), want (5, nil)", seq, err)
	}

	for i, text := range texts {
		got, err := s.Entry(i + 1)
		if got != text || err != nil {
			t.Errorf("Entry(%d) = (%q, %v), want (%q, nil)", i+1, got, err, text)
		}
	}
	if _, err := s.Entry(100); err != ErrNoMatchingEntry {
		t.Errorf("Entry(100) error = %v, want ErrNoMatchingEntry", err)
	}

	entries, err := s.Entries(2, 4)
	wantEntries := []Entry{{Text: "x + 1", Seq: 2}, {Text: "print(x)", Seq: 3}}
	if diff := cmp.Diff(wantEntries, entries); diff != "" || err != nil {
		t.Errorf("Entries(2, 4) (-want +got):\n%s\nerr: %v", diff, err)
	}

	entries, err = s.LastEntries(2)
	wantEntries = []Entry{{Text: "print(x)", Seq: 3}, {Text: "x * 2", Seq: 4}}
	if diff := cmp.Diff(wantEntries, entries); diff != "" || err != nil {
		t.Errorf("LastEntries(2) (-want +got):\n%s\nerr: %v", diff, err)
	}

	prevTests := []struct {
		upto   int
		prefix string
		want   Entry
		err    error
	}{
		{5, "x", Entry{Text: "x * 2", Seq: 4}, nil},
		{100, "x", Entry{Text: "x * 2", Seq: 4}, nil},
		{4, "x", Entry{Text: "x + 1", Seq: 2}, nil},
		{3, "print", Entry{}, ErrNoMatchingEntry},
		{1, "", Entry{}, ErrNoMatchingEntry},
	}
	for _, test := range prevTests {
		got, err := s.PrevEntry(test.upto, test.prefix)
		if got != test.want || err != test.err {
			t.Errorf("PrevEntry(%d, %q) = (%v, %v), want (%v, %v)",
				test.upto, test.prefix, got, err, test.want, test.err)
		}
	}

	got, err := s.NextEntry(2, "x")
	if got != (Entry{Text: "x + 1", Seq: 2}) || err != nil {
		t.Errorf("NextEntry(2, x) = (%v, %v)", got, err)
	}
	if _, err := s.NextEntry(5, ""); err != ErrNoMatchingEntry {
		t.Errorf("NextEntry past end error = %v, want ErrNoMatchingEntry", err)
	}

	if err := s.DelEntry(3); err != nil {
		t.Errorf("DelEntry(3) error = %v", err)
	}
	if _, err := s.Entry(3); err != ErrNoMatchingEntry {
		t.Errorf("Entry(3) after deletion error = %v, want ErrNoMatchingEntry", err)
	}
	seq, _ = s.NextSeq()
	if seq != 5 {
		t.Errorf("NextSeq() after deletion = %d, want 5", seq)
	}
}
