package diag

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error represents an error with context that can be showed.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Variables controlling the style of the message.
var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return e.Type + ": " + e.Context.describeStart() + " " + e.Message
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", title(e.Type), messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.ShowCompact(indent+"  ")
}

// Returns s with its first rune in upper case.
func title(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// GetError returns a *Error if err is one of the given type, or nil.
func GetError(err error, typ string) *Error {
	if e, ok := err.(*Error); ok && e.Type == typ {
		return e
	}
	return nil
}

// Errorf builds an Error of the given type in the given source.
func Errorf(typ, name, source string, r Ranger, format string, args ...any) *Error {
	return &Error{
		Type:    typ,
		Message: strings.TrimSpace(fmt.Sprintf(format, args...)),
		Context: *NewContext(name, source, r),
	}
}
