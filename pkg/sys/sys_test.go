//go:build unix

package sys

import (
	"os"
	"testing"

	"github.com/creack/pty"

	"src.livedoc.dev/pkg/must"
)

func TestIsATTY_Pipe(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	if IsATTY(r.Fd()) || IsATTY(w.Fd()) {
		t.Errorf("pipe reported as terminal")
	}
}

func TestTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty.Open: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	if !IsATTY(tty.Fd()) {
		t.Errorf("pty not reported as terminal")
	}
	must.OK(pty.Setsize(tty, &pty.Winsize{Rows: 30, Cols: 100}))
	if row, col := WinSize(tty); row != 30 || col != 100 {
		t.Errorf("WinSize = (%d, %d), want (30, 100)", row, col)
	}
}

func TestWinSize_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if row, col := WinSize(f); row != -1 || col != -1 {
		t.Errorf("WinSize(file) = (%d, %d), want (-1, -1)", row, col)
	}
}
