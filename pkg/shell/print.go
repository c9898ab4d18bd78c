package shell

import (
	"fmt"
	"os"

	"github.com/dop251/goja"

	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/repl"
	"src.livedoc.dev/pkg/result"
	"src.livedoc.dev/pkg/sys"
)

// Returns the maximum width of printed values, or 0 for no limit.
func (c *console) width() int {
	if c.cfg.Config.MaxRepr > 0 {
		return c.cfg.Config.MaxRepr
	}
	if sys.IsATTY(c.fds[1].Fd()) {
		if _, col := sys.WinSize(c.fds[1]); col > 0 {
			return col
		}
	}
	return 0
}

// Prints the outcome of a statement: its value to stdout, or its error to
// stderr.
func printStatement(fds [3]*os.File, st *repl.Statement, width int) {
	header := fmt.Sprintf("[%d] ", st.Position())
	if st.Name() != "" {
		header += st.Name() + " = "
	}
	switch r := st.Result().(type) {
	case result.Success:
		fmt.Fprintln(fds[1], inspect.Truncate(header+inspect.Repr(r.Value, 0), width))
	case result.Failure:
		fmt.Fprint(fds[2], header)
		diag.ShowError(fds[2], r.Err)
	case result.Inert:
		fmt.Fprintln(fds[1], header+"(not run)")
	}
}

// Returns a one-word description of the state of a statement.
func status(st *repl.Statement) string {
	switch {
	case st.IsReference():
		return "ref"
	case st.Stale():
		return "stale"
	}
	return result.KindOf(st.Result()).String()
}

func isUndefined(v any) bool {
	gv, ok := v.(goja.Value)
	return ok && goja.IsUndefined(gv)
}
