// Package progtest contains utilities for testing subprograms.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.livedoc.dev/pkg/must"
	"src.livedoc.dev/pkg/prog"
)

// Case is a test case for Test. It is created by ThatLivedoc and refined
// with the methods that return the Case itself.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit   int
	out    output
	err    output
	anyOut bool
	anyErr bool
}

type output struct {
	content  string
	contains bool
}

func (o output) String() string {
	if o.contains {
		return "containing " + quote(o.content)
	}
	return quote(o.content)
}

func quote(s string) string { return "\"" + strings.ReplaceAll(s, "\n", `\n`) + "\"" }

// ThatLivedoc returns a new Case that runs the program with the given
// arguments. By default, the case expects the program to exit with 0 and
// write nothing.
func ThatLivedoc(args ...string) Case {
	return Case{args: append([]string{"livedoc"}, args...)}
}

// WithStdin returns an altered Case that feeds s to stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the program to exit with
// the given status.
func (c Case) ExitsWith(exit int) Case {
	c.want.exit = exit
	return c
}

// WritesStdout returns an altered Case that requires stdout to be exactly s.
func (c Case) WritesStdout(s string) Case {
	c.want.out = output{s, false}
	return c
}

// WritesStdoutContaining returns an altered Case that requires stdout to
// contain s.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.out = output{s, true}
	return c
}

// WritesStderr returns an altered Case that requires stderr to be exactly s.
func (c Case) WritesStderr(s string) Case {
	c.want.err = output{s, false}
	return c
}

// WritesStderrContaining returns an altered Case that requires stderr to
// contain s.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.err = output{s, true}
	return c
}

// WritesAnyStdout returns an altered Case that accepts any stdout.
func (c Case) WritesAnyStdout() Case {
	c.want.anyOut = true
	return c
}

// WritesAnyStderr returns an altered Case that accepts any stderr.
func (c Case) WritesAnyStderr() Case {
	c.want.anyErr = true
	return c
}

// Test runs test cases against the given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(c.stdin, c.args, p)
			if exit != c.want.exit {
				t.Errorf("got exit %d, want %d", exit, c.want.exit)
			}
			if !c.want.anyOut && !match(c.want.out, stdout) {
				t.Errorf("got stdout %q, want %s", stdout, c.want.out)
			}
			if !c.want.anyErr && !match(c.want.err, stderr) {
				t.Errorf("got stderr %q, want %s", stderr, c.want.err)
			}
		})
	}
}

func match(want output, got string) bool {
	if want.contains {
		return strings.Contains(got, want.content)
	}
	return want.content == got
}

// Run runs a program with the given stdin and arguments, and returns its exit
// status and output.
func Run(stdin string, args []string, p prog.Program) (exit int, stdout, stderr string) {
	r0, w0 := must.Pipe()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()

	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	// Read outputs concurrently so that the program does not block on a full
	// pipe.
	outCh, errCh := readAsync(r1), readAsync(r2)

	exit = prog.Run([3]*os.File{r0, w1, w2}, args, p)
	w1.Close()
	w2.Close()
	r0.Close()
	return exit, <-outCh, <-errCh
}

func readAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() { ch <- must.ReadAllAndClose(r) }()
	return ch
}
