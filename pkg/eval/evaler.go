// Package eval compiles and runs console code.
//
// Code is compiled into the body of a JavaScript function whose parameters
// are the names of an environment, plus an input slot named arg. Running the
// function yields a result.Result: Success with the returned value, or
// Failure with the compilation error or the thrown exception.
//
// There is no sandboxing. Code runs with the privileges of the host process
// and can block it forever.
package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler owns a JavaScript runtime. All code compiled by one Evaler runs in
// the same runtime, so values produced by one piece of code can be passed to
// another.
//
// An Evaler is not safe for concurrent use.
type Evaler struct {
	vm       *goja.Runtime
	out      io.Writer
	builtins env.Env
}

// NewEvaler creates a new Evaler. Output from print and console methods is
// discarded until SetOutput is called.
func NewEvaler() *Evaler {
	ev := &Evaler{vm: goja.New(), out: io.Discard}
	ev.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	console := ev.vm.NewObject()
	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(name, ev.print)
	}
	ev.vm.Set("console", console)

	ev.builtins = env.Empty.Layer(
		env.Binding{Name: "inspect", Value: ev.vm.ToValue(ev.inspect)},
		env.Binding{Name: "print", Value: ev.vm.ToValue(ev.print)},
	)
	return ev
}

// Runtime returns the underlying JavaScript runtime.
func (ev *Evaler) Runtime() *goja.Runtime { return ev.vm }

// SetOutput sets where print and the console methods write to.
func (ev *Evaler) SetOutput(w io.Writer) { ev.out = w }

// Builtins returns the names the Evaler provides to every environment.
func (ev *Evaler) Builtins() env.Env { return ev.builtins }

// ToValue converts a Go value to a JavaScript value of the Evaler's runtime.
func (ev *Evaler) ToValue(v any) goja.Value {
	if v == nil {
		return goja.Undefined()
	}
	return ev.vm.ToValue(v)
}

func (ev *Evaler) print(call goja.FunctionCall) goja.Value {
	strs := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		strs[i] = inspect.ToString(arg)
	}
	fmt.Fprintln(ev.out, strings.Join(strs, " "))
	return goja.Undefined()
}

func (ev *Evaler) inspect(call goja.FunctionCall) goja.Value {
	return ev.vm.ToValue(inspect.Repr(call.Argument(0), 0))
}
