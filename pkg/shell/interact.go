package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"src.livedoc.dev/pkg/atom"
	"src.livedoc.dev/pkg/config"
	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/repl"
	"src.livedoc.dev/pkg/store/storedefs"
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	Evaler  *eval.Evaler
	Config  *config.Config
	Globals []env.Binding
	// Where typed input is recorded. May be nil.
	Store storedefs.Store
}

type console struct {
	fds     [3]*os.File
	cfg     *InteractConfig
	session *repl.Session
	hist    *storeHistory
}

type lineEditor interface {
	// ReadLine shows the prompt and reads one line, without the line ending.
	ReadLine(prompt string) (string, error)
}

// Returned by a lineEditor when the user abandons the code being entered.
var errAbandoned = errors.New("input abandoned")

// Interact runs an interactive console session.
func Interact(fds [3]*os.File, cfg *InteractConfig) {
	if cfg.Evaler == nil {
		cfg.Evaler = eval.NewEvaler()
		cfg.Evaler.SetOutput(fds[1])
	}
	if cfg.Config == nil {
		cfg.Config = config.Default()
	}
	c := &console{fds, cfg, repl.NewSession(cfg.Evaler, cfg.Globals...),
		newStoreHistory(cfg.Store)}

	if prelude := cfg.Config.Prelude; strings.TrimSpace(prelude) != "" {
		st, ok := c.session.Transfer(prelude)
		if !ok {
			fmt.Fprintln(fds[2], "Warning: prelude does not parse, ignored")
		} else {
			c.printFrom(st.Position())
		}
	}

	var ed lineEditor
	if canUseReadline(fds) {
		ed = newReadlineEditor(c.hist)
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	for {
		code, err := c.readCode(ed)
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			break
		}
		c.handle(code)
	}
	fmt.Fprintln(fds[2])
}

// Reads lines until they form code that is ready to commit, a blank line is
// entered, or the first line is a meta command.
func (c *console) readCode(ed lineEditor) (string, error) {
	var buf strings.Builder
	prompt := c.cfg.Config.Prompt
	for {
		line, err := ed.ReadLine(prompt)
		if err == errAbandoned {
			buf.Reset()
			prompt = c.cfg.Config.Prompt
			continue
		}
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				return buf.String(), nil
			}
			return "", err
		}
		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				return trimmed, nil
			}
		}
		buf.WriteString(line + "\n")
		if strings.TrimSpace(line) == "" {
			return buf.String(), nil
		}
		if _, ok := atom.Atomize(buf.String()); ok {
			return buf.String(), nil
		}
		prompt = c.cfg.Config.Continuation
	}
}

func (c *console) handle(code string) {
	if strings.HasPrefix(code, ":") {
		c.meta(code)
		return
	}
	code = strings.TrimRight(code, "\n")
	st := c.session.Last()
	st.SetCode(code)
	if !c.session.Submit(st) {
		if _, err := atom.Parse(code); err != nil {
			diag.ShowError(c.fds[2], err)
		}
		st.SetCode("")
		return
	}
	if _, err := c.hist.Write(code); err != nil {
		logger.Warnf("cannot add history entry: %v", err)
	}
	c.printFrom(st.Position())
}

// Prints the statements from index i up to, but excluding, the trailing one.
func (c *console) printFrom(i int) {
	for ; i < c.session.Len()-1; i++ {
		printStatement(c.fds, c.session.At(i), c.width())
	}
}
