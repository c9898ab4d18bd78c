package repl

import (
	"errors"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/result"
)

// ErrNotAcceptable is returned by Valuator.Accept when the statement has no
// successful value.
var ErrNotAcceptable = errors.New("statement has no value to accept")

// Valuator is a transient session used to compute a single value, starting
// from some initial values.
type Valuator struct {
	*Session
	value    any
	accepted bool
	onAccept []func(any)
}

// NewValuator creates a Valuator. Each initial binding becomes a reference
// statement.
func NewValuator(ev *eval.Evaler, inject []env.Binding, initial []env.Binding) *Valuator {
	v := &Valuator{Session: NewSession(ev, inject...)}
	for _, b := range initial {
		v.Reference(b.Value, b.Name)
	}
	return v
}

// OnAccept registers a function to call with each accepted value.
func (v *Valuator) OnAccept(f func(any)) {
	v.onAccept = append(v.onAccept, f)
}

// Accept makes the value of st the value of the Valuator.
func (v *Valuator) Accept(st *Statement) error {
	value, ok := result.Value(st.result)
	if !ok {
		return ErrNotAcceptable
	}
	v.value, v.accepted = value, true
	for _, f := range v.onAccept {
		f(value)
	}
	return nil
}

// Value returns the accepted value, if any.
func (v *Valuator) Value() (any, bool) { return v.value, v.accepted }
