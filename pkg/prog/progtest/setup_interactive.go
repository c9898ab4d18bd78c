//go:build unix

package progtest

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/creack/pty"

	"src.livedoc.dev/pkg/must"
	"src.livedoc.dev/pkg/prog"
)

// RunInteractive runs a program with a pseudo-terminal as stdin and stdout,
// typing input into the terminal. It returns the exit status, everything the
// terminal displayed (including the echo of the input) and stderr.
//
// The input should end the session, for example with "\x04" (Ctrl-D) at the
// start of a line.
func RunInteractive(t *testing.T, p prog.Program, input string, args ...string) (exit int, display, stderr string) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("cannot open pty: %v", err)
	}
	defer ptmx.Close()
	must.OK(pty.Setsize(tty, &pty.Winsize{Rows: 24, Cols: 80}))

	displayCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		// Returns an error once the terminal side is closed.
		io.Copy(&buf, ptmx)
		displayCh <- buf.String()
	}()
	go io.WriteString(ptmx, input)

	r2, w2 := must.Pipe()
	errCh := readAsync(r2)
	exit = prog.Run([3]*os.File{tty, tty, w2}, append([]string{"livedoc"}, args...), p)
	w2.Close()
	tty.Close()
	return exit, <-displayCh, <-errCh
}
