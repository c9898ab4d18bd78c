// Package atom splits console input into independent top-level fragments.
//
// Each fragment is one top-level statement of the input, except that
// declarations and comma sequences of assignments are flattened so that
// every assignment target gets a fragment of its own:
//
//	a = 1; b = 2; f();   ->   (a, 1) (b, 2) ("", f())
//	const x = 1, y;      ->   (x, 1) (y, "")
//
// A comma sequence that mixes assignments with other expressions, like
// "a = 4, f(), b = 6", is kept as one fragment without a target.
package atom

import (
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"

	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[atom] ")

// Fragment is one unit of input produced by Atomize.
type Fragment struct {
	// Assignment target, or "" when the fragment does not assign.
	Name string
	// Expression or statement text, without the trailing semicolon.
	Code string
	// Text of the whole fragment, including the target.
	Source string
	// Range of the whole fragment in the input.
	diag.Ranging
}

// Atomize splits code into fragments. It returns false when code is blank,
// does not parse or has no statements; callers should treat that as "keep
// editing" rather than as an error.
func Atomize(code string) ([]Fragment, bool) {
	frags, err := Parse(code)
	if err != nil || len(frags) == 0 {
		return nil, false
	}
	return frags, true
}

// Parse is like Atomize, but returns the parse error. It returns no fragments
// and no error for blank code.
func Parse(code string) ([]Fragment, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	prg, err := parser.ParseFile(nil, "", code, 0)
	if err != nil {
		logger.Debugf("parse failed: %v", err)
		return nil, ParseError(code, err)
	}
	a := atomizer{src: code}
	a.statements(prg.Body)
	return a.frags, nil
}

// ParseError converts an error from the JavaScript parser into a
// *diag.Error pointing into src. Other errors are returned as is.
func ParseError(src string, err error) error {
	var perr *parser.Error
	switch e := err.(type) {
	case parser.ErrorList:
		if len(e) == 0 {
			return err
		}
		perr = e[0]
	case *parser.Error:
		perr = e
	default:
		return err
	}
	idx := diag.PositionToIndex(src, perr.Position.Line, perr.Position.Column)
	return &diag.Error{
		Type:    "parse error",
		Message: perr.Message,
		Context: *diag.NewContext("[input]", src, diag.PointRanging(idx)),
	}
}

type atomizer struct {
	src   string
	frags []Fragment
}

// Offsets of goja nodes are 1-based when parsed without a file set.
func offset(idx file.Idx) int { return int(idx) - 1 }

func (a *atomizer) statements(stmts []ast.Statement) {
	// Skip empty statements, so that spans are computed between the real
	// neighbors.
	var real []ast.Statement
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.EmptyStatement); !ok {
			real = append(real, stmt)
		}
	}
	begin := 0
	for i, stmt := range real {
		end := len(a.src)
		if i+1 < len(real) {
			end = a.cut(offset(stmt.Idx1()), offset(real[i+1].Idx0()))
		}
		a.statement(stmt, begin, end)
		begin = end
	}
}

// Finds where a statement ends in the gap [from, to) between two statements:
// after the first semicolon, else at the first newline, else at to.
func (a *atomizer) cut(from, to int) int {
	from, to = clamp(from, len(a.src)), clamp(to, len(a.src))
	if from >= to {
		return to
	}
	gap := a.src[from:to]
	if i := strings.IndexByte(gap, ';'); i != -1 {
		return from + i + 1
	}
	if i := strings.IndexByte(gap, '\n'); i != -1 {
		return from + i + 1
	}
	return to
}

func (a *atomizer) statement(stmt ast.Statement, begin, end int) {
	switch stmt := stmt.(type) {
	case *ast.VariableStatement:
		if a.declarators(stmt.List, begin, end) {
			return
		}
	case *ast.LexicalDeclaration:
		if a.declarators(stmt.List, begin, end) {
			return
		}
	case *ast.ExpressionStatement:
		switch expr := stmt.Expression.(type) {
		case *ast.AssignExpression:
			if a.assignments([]ast.Expression{expr}, begin, end) {
				return
			}
		case *ast.SequenceExpression:
			if a.assignments(expr.Sequence, begin, end) {
				return
			}
		}
	}
	a.add("", begin, end)
}

// Emits one fragment per declarator. It returns false without emitting
// anything when some declarator binds a pattern instead of a name.
func (a *atomizer) declarators(list []*ast.Binding, begin, end int) bool {
	for _, b := range list {
		if _, ok := b.Target.(*ast.Identifier); !ok {
			return false
		}
	}
	for i, b := range list {
		name := string(b.Target.(*ast.Identifier).Name)
		valueEnd := end
		if i+1 < len(list) {
			valueEnd = offset(list[i+1].Target.Idx0())
		}
		from := begin
		if i > 0 {
			from = offset(b.Target.Idx0())
		}
		a.target(name, offset(b.Target.Idx1()), from, valueEnd, b.Initializer != nil)
	}
	return true
}

// Emits one fragment per assignment. It returns false without emitting
// anything unless every expression is a plain assignment to a name or a
// member.
func (a *atomizer) assignments(exprs []ast.Expression, begin, end int) bool {
	for _, expr := range exprs {
		assign, ok := expr.(*ast.AssignExpression)
		if !ok || assign.Operator != token.ASSIGN {
			return false
		}
		switch assign.Left.(type) {
		case *ast.Identifier, *ast.DotExpression, *ast.BracketExpression:
		default:
			return false
		}
	}
	for i, expr := range exprs {
		assign := expr.(*ast.AssignExpression)
		left := strings.TrimSpace(a.text(offset(assign.Left.Idx0()), offset(assign.Left.Idx1())))
		valueEnd := end
		if i+1 < len(exprs) {
			valueEnd = offset(exprs[i+1].(*ast.AssignExpression).Left.Idx0())
		}
		from := begin
		if i > 0 {
			from = offset(assign.Left.Idx0())
		}
		a.target(left, offset(assign.Left.Idx1()), from, valueEnd, true)
	}
	return true
}

// Emits a fragment with a target. The value is the text after the first "="
// following the target, up to end.
func (a *atomizer) target(name string, targetEnd, begin, end int, hasValue bool) {
	code := ""
	if hasValue {
		eq := strings.IndexByte(a.text(targetEnd, end), '=')
		if eq != -1 {
			code = trim(a.text(targetEnd+eq+1, end))
			code = strings.TrimSuffix(code, ",")
			code = strings.TrimRight(code, " \t\r\n")
		}
	}
	r := a.ranging(begin, end)
	a.frags = append(a.frags, Fragment{name, code, a.src[r.From:r.To], r})
}

func (a *atomizer) add(name string, begin, end int) {
	r := a.ranging(begin, end)
	a.frags = append(a.frags, Fragment{name, trim(a.text(begin, end)), a.src[r.From:r.To], r})
}

func (a *atomizer) text(begin, end int) string {
	begin, end = clamp(begin, len(a.src)), clamp(end, len(a.src))
	if begin >= end {
		return ""
	}
	return a.src[begin:end]
}

// Ranging of the trimmed text in [begin, end).
func (a *atomizer) ranging(begin, end int) diag.Ranging {
	s := a.text(begin, end)
	from := begin + len(s) - len(strings.TrimLeft(s, cutset))
	to := begin + len(strings.TrimRight(s, cutset))
	if to < from {
		to = from
	}
	return diag.Ranging{From: clamp(from, len(a.src)), To: clamp(to, len(a.src))}
}

const cutset = " \t\r\n;,"

func trim(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimRight(strings.TrimSuffix(s, ";"), " \t\r\n")
	}
	return s
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
