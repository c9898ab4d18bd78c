package eval

import (
	"strings"

	"github.com/dop251/goja"
)

// Exception is a value thrown by running code.
type Exception struct {
	exc *goja.Exception
}

func wrapException(err error) error {
	if exc, ok := err.(*goja.Exception); ok {
		return &Exception{exc}
	}
	return err
}

// Value returns the thrown value.
func (e *Exception) Value() goja.Value { return e.exc.Value() }

// Error returns the thrown value converted to a string.
func (e *Exception) Error() string {
	if v := e.exc.Value(); v != nil {
		return v.String()
	}
	return "undefined"
}

// Unwrap returns the underlying runtime exception.
func (e *Exception) Unwrap() error { return e.exc }

// Show shows the exception and the stack trace.
func (e *Exception) Show(indent string) string {
	var sb strings.Builder
	sb.WriteString("Exception: \033[31;1m" + e.Error() + "\033[m")
	lines := strings.Split(strings.TrimRight(e.exc.String(), "\n"), "\n")
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			sb.WriteString("\n" + indent + "  " + line)
		}
	}
	return sb.String()
}
