package repl

import (
	"strings"

	"src.livedoc.dev/pkg/atom"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/result"
)

// Statement is one unit of console history: an optional name, some code, and
// the result of running the code.
//
// A Statement sees the bindings of the successful named statements before it
// in its Session, and binds its own name to its value for the statements
// after it.
type Statement struct {
	session *Session

	name     string
	code     string
	result   result.Result
	position int
	runCount int
	ranAt    uint64

	// Code at the time of the last commit, used to make committing unedited
	// code a no-op.
	committedCode string
	committed     bool

	pinned    bool
	reference bool
}

// Name returns the name the statement binds, or "".
func (st *Statement) Name() string { return st.name }

// Code returns the code of the statement.
func (st *Statement) Code() string { return st.code }

// Result returns the result of the last run, or nil if the statement has not
// run yet.
func (st *Statement) Result() result.Result { return st.result }

// Position returns the index of the statement in its session, or -1 if it is
// not part of the statement sequence.
func (st *Statement) Position() int { return st.position }

// RunCount returns how many times the statement has run.
func (st *Statement) RunCount() int { return st.runCount }

// Committed returns whether the statement has been committed.
func (st *Statement) Committed() bool { return st.committed }

// Pinned returns whether the statement is pinned.
func (st *Statement) Pinned() bool { return st.pinned }

// IsReference returns whether the statement wraps an external value.
func (st *Statement) IsReference() bool { return st.reference }

// Blank returns whether the code of the statement is empty or only contains
// whitespace. A reference is never blank.
func (st *Statement) Blank() bool {
	return !st.reference && strings.TrimSpace(st.code) == ""
}

// Stale returns whether the statement has succeeded, but some statement
// before it has run more recently. Staleness is advisory; it does not affect
// environments. References are never stale.
func (st *Statement) Stale() bool {
	if st.reference || !result.IsSuccess(st.result) || st.session == nil || st.position < 0 {
		return false
	}
	for _, prev := range st.session.statements[:st.position] {
		if prev.ranAt > st.ranAt {
			return true
		}
	}
	return false
}

// SetCode changes the code of the statement. It does nothing for references.
func (st *Statement) SetCode(code string) {
	if st.reference || st.code == code {
		return
	}
	st.code = code
	st.changed()
}

// SetName changes the name of the statement. It does nothing for references.
func (st *Statement) SetName(name string) {
	if st.reference || st.name == name {
		return
	}
	st.name = name
	st.changed()
}

// Commit splits the code of the statement into fragments and runs them. The
// first fragment stays in this statement, and each additional fragment
// becomes a new statement inserted right after it.
//
// Commit returns false without doing anything if the code is blank, does not
// parse yet, or has not changed since the last commit. It returns true
// otherwise, even when running some fragment fails.
func (st *Statement) Commit() bool {
	if st.reference || st.Blank() {
		return false
	}
	if st.committed && st.code == st.committedCode {
		return false
	}
	frags, ok := atom.Atomize(st.code)
	if !ok {
		return false
	}
	s := st.mustSession()
	logger.Debugf("committing statement %d as %d fragments", st.position, len(frags))

	first := frags[0]
	if name, code, ok := binding(first); ok {
		st.name, st.code = name, code
	} else if len(frags) > 1 {
		st.code = code
	}
	st.committed = true
	st.committedCode = st.code
	st.changed()

	extra := make([]*Statement, len(frags)-1)
	for i, frag := range frags[1:] {
		name, code, _ := binding(frag)
		extra[i] = &Statement{
			session: s, name: name, code: code,
			committed: true, committedCode: code,
		}
		s.insert(st.position+1+i, extra[i])
	}

	st.Run()
	for _, ns := range extra {
		ns.Run()
	}
	return true
}

// Returns the name and code a fragment should become. The name is "" and ok
// is false when the fragment does not assign to a plain identifier; the code
// is then the whole fragment.
func binding(f atom.Fragment) (name, code string, ok bool) {
	if f.Name != "" && eval.IsIdentifier(f.Name) {
		return f.Name, f.Code, true
	}
	return "", f.Source, false
}

// Run runs the statement against the environment built from the statements
// before it, and stores the result. It does nothing for references.
func (st *Statement) Run() result.Result {
	if st.reference {
		return st.result
	}
	s := st.mustSession()
	st.result = s.ev.Eval(s.Env(st.position), st.code)
	st.runCount++
	st.ranAt = s.tick()
	if err := result.Err(st.result); err != nil {
		logger.Debugf("statement %d failed: %v", st.position, err)
	}
	st.changed()
	return st.result
}

func (st *Statement) mustSession() *Session {
	if st.session == nil {
		panic("repl: statement does not belong to a session")
	}
	return st.session
}

func (st *Statement) changed() {
	if st.session != nil {
		st.session.emit(Event{StatementChanged, st})
	}
}
