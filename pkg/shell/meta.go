package shell

import (
	"fmt"
	"strconv"
	"strings"

	"src.livedoc.dev/pkg/atom"
	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/repl"
	"src.livedoc.dev/pkg/result"
)

const metaHelp = `Commands:
  :help          show this help
  :list          list statements
  :env           show the bindings visible to the next statement
  :run N         rerun statement N
  :rm N          remove statement N
  :pin N         pin statement N
  :unpin N       unpin statement N
  :pins          list pinned statements
  :load FILE     transfer the code in FILE into the console
  :history [N]   show the last N inputs (default 10)
  :clear         remove all statements and pins`

type metaCommand struct {
	nargs int // -1 means 0 or 1
	fn    func(c *console, args []string) error
}

var metaCommands map[string]metaCommand

func init() {
	metaCommands = map[string]metaCommand{
		"help":    {0, func(c *console, _ []string) error { fmt.Fprintln(c.fds[1], metaHelp); return nil }},
		"list":    {0, (*console).list},
		"env":     {0, (*console).env},
		"run":     {1, (*console).run},
		"rm":      {1, (*console).remove},
		"pin":     {1, (*console).pin},
		"unpin":   {1, (*console).unpin},
		"pins":    {0, (*console).pins},
		"load":    {1, (*console).load},
		"history": {-1, (*console).history},
		"clear":   {0, func(c *console, _ []string) error { c.session.Clear(); return nil }},
	}
}

func (c *console) meta(line string) {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		diag.Complain(c.fds[2], "empty command; try :help")
		return
	}
	cmd, ok := metaCommands[fields[0]]
	if !ok {
		diag.Complainf(c.fds[2], "unknown command :%s; try :help", fields[0])
		return
	}
	args := fields[1:]
	if (cmd.nargs >= 0 && len(args) != cmd.nargs) || (cmd.nargs < 0 && len(args) > 1) {
		diag.Complainf(c.fds[2], "wrong number of arguments to :%s", fields[0])
		return
	}
	if err := cmd.fn(c, args); err != nil {
		diag.ShowError(c.fds[2], err)
	}
}

func (c *console) statementArg(arg string) (*repl.Statement, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= c.session.Len() {
		return nil, fmt.Errorf("no statement %s", arg)
	}
	return c.session.At(i), nil
}

func (c *console) list(_ []string) error {
	for _, st := range c.session.Statements() {
		if st.Blank() && !st.Committed() {
			continue
		}
		code := st.Code()
		if st.IsReference() {
			code = "<reference>"
		}
		if st.Name() != "" {
			code = st.Name() + " = " + code
		}
		line := fmt.Sprintf("[%d] %s", st.Position(), code)
		if s := status(st); s != "" {
			line += "  (" + s + ")"
		}
		fmt.Fprintln(c.fds[1], inspect.Truncate(line, c.width()))
	}
	return nil
}

func (c *console) env(_ []string) error {
	defined := map[string]bool{}
	for _, st := range c.session.Statements() {
		if st.Name() != "" {
			defined[st.Name()] = true
		}
	}
	for _, b := range c.session.Env(c.session.Len()).Bindings() {
		if !defined[b.Name] {
			continue
		}
		fmt.Fprintln(c.fds[1],
			inspect.Truncate(b.Name+" = "+inspect.Repr(b.Value, inspect.NoPretty), c.width()))
	}
	return nil
}

func (c *console) run(args []string) error {
	st, err := c.statementArg(args[0])
	if err != nil {
		return err
	}
	st.Run()
	printStatement(c.fds, st, c.width())
	return nil
}

func (c *console) remove(args []string) error {
	st, err := c.statementArg(args[0])
	if err != nil {
		return err
	}
	c.session.Remove(st)
	return nil
}

func (c *console) pin(args []string) error {
	st, err := c.statementArg(args[0])
	if err != nil {
		return err
	}
	c.session.Pin(st)
	return nil
}

func (c *console) unpin(args []string) error {
	st, err := c.statementArg(args[0])
	if err != nil {
		return err
	}
	c.session.Unpin(st)
	return nil
}

func (c *console) pins(_ []string) error {
	for i, st := range c.session.Pins() {
		line := fmt.Sprintf("(%d) ", i)
		if st.Name() != "" {
			line += st.Name() + " = "
		}
		switch r := st.Result().(type) {
		case result.Success:
			line += inspect.Repr(r.Value, inspect.NoPretty)
		case result.Failure:
			line += "<failed: " + r.Err.Error() + ">"
		default:
			line += "<not run>"
		}
		fmt.Fprintln(c.fds[1], inspect.Truncate(line, c.width()))
	}
	return nil
}

func (c *console) load(args []string) error {
	code, err := readFileUTF8(args[0])
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", args[0], err)
	}
	st, ok := c.session.Transfer(code)
	if !ok {
		_, err := atom.Parse(code)
		return err
	}
	c.printFrom(st.Position())
	return nil
}

func (c *console) history(args []string) error {
	if c.cfg.Store == nil {
		return fmt.Errorf("history is not available")
	}
	n := 10
	if len(args) == 1 {
		var err error
		n, err = strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("bad count %s", args[0])
		}
	}
	entries, err := c.cfg.Store.LastEntries(n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.fds[1], "%4d  %s\n", e.Seq, strings.ReplaceAll(e.Text, "\n", "\n      "))
	}
	return nil
}
