// Package repl implements console sessions: ordered sequences of statements
// that are committed, run and rerun against the bindings of the statements
// before them.
package repl

import (
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/logutil"
	"src.livedoc.dev/pkg/result"
)

var logger = logutil.GetLogger("[repl] ")

// Session is an ordered sequence of statements plus a collection of pins.
//
// The sequence is never empty, and after each commit it ends with a blank
// statement to type the next piece of code into.
//
// A Session is not safe for concurrent use.
type Session struct {
	ev   *eval.Evaler
	base env.Env

	statements []*Statement
	pins       []*Statement

	// Logical clock for ordering runs.
	clock       uint64
	subscribers []*subscriber
}

// NewSession creates a session whose statements run with ev. The base
// environment consists of the builtins of ev, overridden by the injected
// bindings.
func NewSession(ev *eval.Evaler, inject ...env.Binding) *Session {
	s := &Session{ev: ev, base: ev.Builtins().Layer(inject...)}
	s.CreateStatement()
	return s
}

// Evaler returns the Evaler the session runs statements with.
func (s *Session) Evaler() *eval.Evaler { return s.ev }

// Base returns the base environment.
func (s *Session) Base() env.Env { return s.base }

// Statements returns a copy of the statement sequence.
func (s *Session) Statements() []*Statement {
	return append([]*Statement(nil), s.statements...)
}

// Len returns the number of statements.
func (s *Session) Len() int { return len(s.statements) }

// At returns the statement at index i.
func (s *Session) At(i int) *Statement { return s.statements[i] }

// Last returns the last statement.
func (s *Session) Last() *Statement { return s.statements[len(s.statements)-1] }

// IndexOf returns the index of st in the session, or -1 if st is not part of
// the statement sequence.
func (s *Session) IndexOf(st *Statement) int {
	if st.session != s || st.position < 0 || st.position >= len(s.statements) ||
		s.statements[st.position] != st {
		return -1
	}
	return st.position
}

// Env builds the environment of the statement at index upto: the base
// environment, plus the name and value of each successful named statement
// before upto. A later statement overrides an earlier one with the same name.
func (s *Session) Env(upto int) env.Env {
	if upto > len(s.statements) {
		upto = len(s.statements)
	} else if upto < 0 {
		upto = 0
	}
	e := s.base
	for _, st := range s.statements[:upto] {
		if st.name == "" {
			continue
		}
		if v, ok := result.Value(st.result); ok {
			e = e.Assoc(st.name, v)
		}
	}
	return e
}

// CreateStatement appends a new blank statement and returns it.
func (s *Session) CreateStatement() *Statement {
	return s.CreateStatementAfter(len(s.statements) - 1)
}

// CreateStatementAfter inserts a new blank statement after index i and
// returns it. An i of -1 inserts at the start.
func (s *Session) CreateStatementAfter(i int) *Statement {
	st := &Statement{session: s}
	s.insert(i+1, st)
	return st
}

// Commit makes sure that the session ends with an uncommitted blank
// statement, appending one if necessary. It should be called after the
// trailing statement has been committed.
func (s *Session) Commit() {
	if len(s.statements) > 0 {
		if last := s.Last(); last.Blank() && !last.committed {
			return
		}
	}
	s.CreateStatement()
}

// Submit commits st, and commits the session if st was committed.
func (s *Session) Submit(st *Statement) bool {
	if !st.Commit() {
		return false
	}
	s.Commit()
	return true
}

// Transfer puts code into the trailing statement and submits it. A single
// return keyword in front of the last top-level statement is removed, so
// that the body of a sample function can be transferred as is. If the
// trailing statement is not blank, a new statement is created for the code.
//
// When the code cannot be committed, the statement is left blank, so that
// the next transfer reuses it.
func (s *Session) Transfer(code string) (*Statement, bool) {
	code = stripReturn(code)
	st := s.Last()
	if !st.Blank() || st.committed {
		st = s.CreateStatement()
	}
	st.SetCode(code)
	if !s.Submit(st) {
		st.SetCode("")
		return st, false
	}
	return st, true
}

const transferHeader = "function __transfer__() {\n"

func stripReturn(code string) string {
	prg, err := parser.ParseFile(nil, "", transferHeader+code+"\n}", 0)
	if err != nil || len(prg.Body) != 1 {
		return code
	}
	fn, ok := prg.Body[0].(*ast.FunctionDeclaration)
	if !ok || len(fn.Function.Body.List) == 0 {
		return code
	}
	ret, ok := fn.Function.Body.List[len(fn.Function.Body.List)-1].(*ast.ReturnStatement)
	if !ok {
		return code
	}
	i := int(ret.Return) - 1 - len(transferHeader)
	if i < 0 || !strings.HasPrefix(code[i:], "return") {
		return code
	}
	return code[:i] + strings.TrimLeft(code[i+len("return"):], " \t")
}

// Reference wraps value in a reference statement named name. The reference
// is inserted before the trailing statement if it is blank; otherwise it is
// appended and the session is committed.
func (s *Session) Reference(value any, name string) *Statement {
	st := s.newReference(value, name)
	if last := s.Last(); last.Blank() && !last.committed {
		s.insert(len(s.statements)-1, st)
	} else {
		s.insert(len(s.statements), st)
		s.Commit()
	}
	return st
}

func (s *Session) newReference(value any, name string) *Statement {
	return &Statement{
		session:   s,
		name:      name,
		result:    result.Success{Value: value},
		committed: true,
		reference: true,
		position:  -1,
		ranAt:     s.tick(),
	}
}

// Remove removes st and its pin. It returns false if st is not part of the
// session. If st was the trailing statement, a new blank one is created.
func (s *Session) Remove(st *Statement) bool {
	i := s.IndexOf(st)
	if i == -1 {
		return false
	}
	s.statements = append(s.statements[:i:i], s.statements[i+1:]...)
	s.renumber(i)
	if st.pinned {
		s.Unpin(st)
	}
	s.emit(Event{StatementRemoved, st})
	st.session = nil
	st.position = -1
	s.Commit()
	return true
}

// Clear removes all statements and pins, leaving a single blank statement.
func (s *Session) Clear() {
	for _, st := range s.statements {
		st.session = nil
		st.position = -1
		st.pinned = false
	}
	for _, st := range s.pins {
		st.pinned = false
	}
	s.statements = nil
	s.pins = nil
	s.emit(Event{Cleared, nil})
	s.CreateStatement()
}

// Pin adds st to the pins. It does nothing if st is already pinned.
func (s *Session) Pin(st *Statement) {
	if st.pinned {
		return
	}
	st.pinned = true
	s.pins = append(s.pins, st)
	s.emit(Event{PinsChanged, st})
}

// Unpin removes st from the pins. It does nothing if st is not pinned.
func (s *Session) Unpin(st *Statement) {
	for i, pin := range s.pins {
		if pin == st {
			s.pins = append(s.pins[:i:i], s.pins[i+1:]...)
			st.pinned = false
			s.emit(Event{PinsChanged, st})
			return
		}
	}
}

// PinValue pins a reference to value that is not part of the statement
// sequence.
func (s *Session) PinValue(value any, name string) *Statement {
	st := s.newReference(value, name)
	s.Pin(st)
	return st
}

// Pins returns a copy of the pins, in the order they were pinned.
func (s *Session) Pins() []*Statement {
	return append([]*Statement(nil), s.pins...)
}

func (s *Session) insert(i int, st *Statement) {
	if i < 0 {
		i = 0
	} else if i > len(s.statements) {
		i = len(s.statements)
	}
	s.statements = append(s.statements, nil)
	copy(s.statements[i+1:], s.statements[i:])
	s.statements[i] = st
	st.session = s
	s.renumber(i)
	s.emit(Event{StatementAdded, st})
}

func (s *Session) renumber(from int) {
	for i := from; i < len(s.statements); i++ {
		s.statements[i].position = i
	}
}

func (s *Session) tick() uint64 {
	s.clock++
	return s.clock
}
