package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"src.livedoc.dev/pkg/testutil"
)

type showerError struct{}

func (showerError) Error() string { return "error" }

func (showerError) Show(_ string) string { return "show" }

var (
	badSemicolon = Errorf("compilation error", "[code]", "x = ;", Ranging{4, 5}, "Unexpected token ;")
	unclosedCall = Errorf("compilation error", "[code]", "f(", PointRanging(2), "Unexpected end of input")
)

var showErrorTests = []struct {
	name    string
	err     error
	wantBuf string
}{
	{"A Shower error", showerError{}, "show\n"},
	{"A errors.New error", errors.New("ERROR"), "\033[31;1mERROR\033[m\n"},
	{"A compilation error", badSemicolon,
		"Compilation error: {Unexpected token ;}\n  [code]:1:5: x = <;>\n"},
	{"A compilation error at the end of the code", unclosedCall,
		"Compilation error: {Unexpected end of input}\n  [code]:1:3: f(<^>\n"},
	// Wrapping hides the Show method, so only the message is complained.
	{"A wrapped compilation error", fmt.Errorf("load: %w", badSemicolon),
		"\033[31;1mload: compilation error: [code]:1:5: Unexpected token ;\033[m\n"},
}

func TestShowError(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	testutil.Set(t, &messageStart, "{")
	testutil.Set(t, &messageEnd, "}")
	for _, test := range showErrorTests {
		t.Run(test.name, func(t *testing.T) {
			sb := &strings.Builder{}
			ShowError(sb, test.err)
			if sb.String() != test.wantBuf {
				t.Errorf("Wrote %q, want %q", sb.String(), test.wantBuf)
			}
		})
	}
}
