package eval

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/result"
)

// ArgName is the name of the parameter that receives the input of a Callable.
// An environment binding with the same name is not visible to compiled code.
const ArgName = "arg"

// Callable is compiled code. Calling it runs the code with the given input
// bound to ArgName; a nil input is passed as undefined.
type Callable func(arg any) result.Result

// Compile compiles code against an environment. It returns a Success holding
// a Callable, or a Failure holding a compilation error.
//
// Code that is a single expression is compiled so that the Callable returns
// its value. Other code is compiled as a function body and only returns a
// value with an explicit return statement.
func (ev *Evaler) Compile(e env.Env, code string) result.Result {
	var (
		names  []string
		values []goja.Value
	)
	for _, b := range e.Bindings() {
		if b.Name == ArgName || !IsIdentifier(b.Name) {
			continue
		}
		names = append(names, b.Name)
		values = append(values, ev.ToValue(b.Value))
	}
	header := "(function(" + strings.Join(append(names, ArgName), ", ") + ") {\n"

	fn, err := ev.compileFunction(header + "return (" + trimSemicolons(code) + "\n);\n})")
	if err != nil {
		fn, err = ev.compileFunction(header + code + "\n})")
		if err != nil {
			logger.Debugf("compilation failed: %v", err)
			return result.Failure{Err: compilationError(code, header, err)}
		}
	}

	return result.Success{Value: Callable(func(arg any) (r result.Result) {
		defer func() {
			if p := recover(); p != nil {
				logger.Warnf("panic while running code: %v", p)
				r = result.Failure{Err: fmt.Errorf("panic: %v", p)}
			}
		}()
		args := append(values[:len(values):len(values)], ev.ToValue(arg))
		v, err := fn(ev.vm.NewObject(), args...)
		if err != nil {
			return result.Failure{Err: wrapException(err)}
		}
		return result.Success{Value: v}
	})}
}

// Eval compiles code and runs it with no input.
func (ev *Evaler) Eval(e env.Env, code string) result.Result {
	return ev.Compile(e, code).FlatMap(func(v any) result.Result {
		return Run(v.(Callable))
	})
}

// Run runs a Callable with no input.
func Run(c Callable) result.Result { return c(nil) }

// Call runs a Callable with the given input.
func Call(c Callable, arg any) result.Result { return c(arg) }

// Parses and compiles the source of a function expression, and evaluates it
// to get the function.
func (ev *Evaler) compileFunction(src string) (goja.Callable, error) {
	ast, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return nil, err
	}
	prg, err := goja.CompileAST(ast, false)
	if err != nil {
		return nil, err
	}
	v, err := ev.vm.RunProgram(prg)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("compiled code is not a function")
	}
	return fn, nil
}

// Converts an error from compiling header+code+"\n})" into a *diag.Error
// pointing into code.
func compilationError(code, header string, err error) error {
	var (
		msg string
		idx int
	)
	switch e := err.(type) {
	case parser.ErrorList:
		if len(e) == 0 {
			return err
		}
		msg = e[0].Message
		idx = diag.PositionToIndex(code, e[0].Position.Line-1, e[0].Position.Column)
		if e[0].Position.Line <= 1 {
			idx = 0
		}
	case *parser.Error:
		msg = e.Message
		idx = diag.PositionToIndex(code, e.Position.Line-1, e.Position.Column)
	case *goja.CompilerSyntaxError:
		msg = e.Message
		idx = e.Offset - len(header)
	case *goja.Exception:
		msg = e.Value().String()
	default:
		msg = err.Error()
	}
	if idx < 0 {
		idx = 0
	} else if idx > len(code) {
		idx = len(code)
	}
	return diag.Errorf("compilation error", "[code]", code, diag.PointRanging(idx), "%s", msg)
}

// GetCompilationError returns a *diag.Error if err is a compilation error, or
// nil otherwise.
func GetCompilationError(err error) *diag.Error {
	return diag.GetError(err, "compilation error")
}

func trimSemicolons(code string) string {
	code = strings.TrimRight(code, " \t\r\n")
	for strings.HasSuffix(code, ";") {
		code = strings.TrimRight(strings.TrimSuffix(code, ";"), " \t\r\n")
	}
	return code
}

// IsIdentifier returns whether name can be used as a parameter name.
func IsIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

var reservedWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		await break case catch class const continue debugger default delete do
		else enum export extends false finally for function if implements
		import in instanceof interface let new null package private protected
		public return static super switch this throw true try typeof var void
		while with yield arguments eval`) {
		reservedWords[w] = true
	}
}
