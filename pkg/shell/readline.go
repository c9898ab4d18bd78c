package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lmorg/readline"
	"src.livedoc.dev/pkg/store/storedefs"
	"src.livedoc.dev/pkg/sys"
)

// Messages of the errors the readline library returns for Ctrl-C and Ctrl-D.
const (
	readlineCtrlC = "Ctrl+C"
	readlineEOF   = "EOF"
)

// Number of stored entries loaded for recall when the console starts.
const historyRecall = 1000

// Reports whether the full line editor can be used. The readline library
// always talks to the process's own stdin and stdout, so it is used only when
// those are the files given to the console and both are terminals.
func canUseReadline(fds [3]*os.File) bool {
	return fds[0] == os.Stdin && fds[1] == os.Stdout &&
		sys.IsATTY(fds[0].Fd()) && sys.IsATTY(fds[1].Fd())
}

type readlineEditor struct {
	rl *readline.Instance
}

func newReadlineEditor(h *storeHistory) *readlineEditor {
	rl := readline.NewInstance()
	rl.History = h
	// Committed code is recorded by the console, not on every line read.
	rl.HistoryAutoWrite = false
	return &readlineEditor{rl}
}

// ReadLine shows the prompt and reads one line. Ctrl-C returns errAbandoned;
// Ctrl-D on an empty line returns io.EOF.
func (ed *readlineEditor) ReadLine(prompt string) (string, error) {
	ed.rl.SetPrompt(prompt)
	line, err := ed.rl.Readline()
	if err != nil {
		switch err.Error() {
		case readlineCtrlC:
			return "", errAbandoned
		case readlineEOF:
			return "", io.EOF
		}
	}
	return line, err
}

// Input history backed by the store, in the form the readline library wants.
// Entries are kept in memory so that recall does not hit the database on
// every key press. A nil store keeps the history for the session only.
type storeHistory struct {
	store   storedefs.Store
	entries []string
}

func newStoreHistory(s storedefs.Store) *storeHistory {
	h := &storeHistory{store: s}
	if s == nil {
		return h
	}
	entries, err := s.LastEntries(historyRecall)
	if err != nil {
		logger.Warnf("cannot load history: %v", err)
	}
	for _, e := range entries {
		h.entries = append(h.entries, e.Text)
	}
	return h
}

// Write records a committed piece of code and returns the new length of the
// history.
func (h *storeHistory) Write(text string) (int, error) {
	h.entries = append(h.entries, text)
	if h.store != nil {
		if _, err := h.store.AddEntry(text); err != nil {
			return len(h.entries), err
		}
	}
	return len(h.entries), nil
}

// GetLine returns the i-th entry, oldest first. Code that spans several lines
// is recalled joined into one, since the editor edits a single line.
func (h *storeHistory) GetLine(i int) (string, error) {
	if i < 0 || i >= len(h.entries) {
		return "", fmt.Errorf("history index %d out of range", i)
	}
	return strings.ReplaceAll(h.entries[i], "\n", " "), nil
}

func (h *storeHistory) Len() int { return len(h.entries) }

func (h *storeHistory) Dump() any { return h.entries }
