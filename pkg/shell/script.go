package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"src.livedoc.dev/pkg/atom"
	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/repl"
	"src.livedoc.dev/pkg/result"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
}

// Runs a script as if it was transferred into a fresh console, printing the
// values of statements without a name.
func script(fds [3]*os.File, ev *eval.Evaler, globals []env.Binding, args []string, cfg *scriptCfg) int {
	if len(args) > 1 {
		fmt.Fprintln(fds[2], "extra arguments after the script are ignored")
	}
	arg0 := args[0]

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	if cfg.CompileOnly {
		errs := check(ev, globals, name, code)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(errs))
		} else {
			for _, err := range errs {
				diag.ShowError(fds[2], err)
			}
		}
		if len(errs) > 0 {
			return 2
		}
		return 0
	}

	session := repl.NewSession(ev, globals...)
	st, ok := session.Transfer(code)
	if !ok {
		if _, err := atom.Parse(code); err != nil {
			diag.ShowError(fds[2], renameContext(err, name))
			return 2
		}
		return 0
	}
	exit := 0
	for i := st.Position(); i < session.Len()-1; i++ {
		st := session.At(i)
		switch r := st.Result().(type) {
		case result.Success:
			if st.Name() == "" && !isUndefined(r.Value) {
				fmt.Fprintln(fds[1], inspect.Repr(r.Value, 0))
			}
		case result.Failure:
			diag.ShowError(fds[2], r.Err)
			exit = 2
		}
	}
	return exit
}

// Parses code and compiles each fragment without running it. The returned
// errors all point into code.
func check(ev *eval.Evaler, globals []env.Binding, name, code string) []*diag.Error {
	frags, err := atom.Parse(code)
	if err != nil {
		if e, ok := renameContext(err, name).(*diag.Error); ok {
			return []*diag.Error{e}
		}
		return []*diag.Error{{Type: "parse error", Message: err.Error(),
			Context: *diag.NewContext(name, code, diag.Ranging{})}}
	}
	e := ev.Builtins().Layer(globals...)
	var errs []*diag.Error
	for _, frag := range frags {
		fragCode := frag.Source
		if frag.Name != "" && eval.IsIdentifier(frag.Name) {
			fragCode = frag.Code
		}
		cerr := eval.GetCompilationError(result.Err(ev.Compile(e, fragCode)))
		if cerr == nil {
			continue
		}
		shift := frag.From + max0(strings.Index(frag.Source, fragCode))
		errs = append(errs, &diag.Error{
			Type:    cerr.Type,
			Message: cerr.Message,
			Context: *diag.NewContext(name, code, diag.Ranging{
				From: cerr.Context.From + shift, To: cerr.Context.To + shift}),
		})
	}
	return errs
}

// Returns a copy of a *diag.Error with the context name replaced.
func renameContext(err error, name string) error {
	e, ok := err.(*diag.Error)
	if !ok {
		return err
	}
	return &diag.Error{Type: e.Type, Message: e.Message,
		Context: *diag.NewContext(name, e.Context.Source, e.Context.Ranging)}
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts parse and compilation errors into JSON.
func errorsToJSON(errs []*diag.Error) []byte {
	converted := []errorInJSON{}
	for _, e := range errs {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
