package atom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"src.livedoc.dev/pkg/diag"
	"src.livedoc.dev/pkg/tt"
)

type pair struct{ Name, Code string }

// Drops ranges, which are tested separately.
func pairs(code string) ([]pair, bool) {
	frags, ok := Atomize(code)
	if !ok {
		return nil, false
	}
	ps := make([]pair, len(frags))
	for i, f := range frags {
		ps[i] = pair{f.Name, f.Code}
	}
	return ps, true
}

func TestAtomize(t *testing.T) {
	tt.Test(t, tt.Fn("Atomize", pairs), tt.Table{
		// Not ready
		tt.Args("").Rets([]pair(nil), false),
		tt.Args("   ").Rets([]pair(nil), false),
		tt.Args("\n\t").Rets([]pair(nil), false),
		tt.Args("a = ;").Rets([]pair(nil), false),
		tt.Args("f(").Rets([]pair(nil), false),
		tt.Args(";;").Rets([]pair(nil), false),
		tt.Args("// just a comment").Rets([]pair(nil), false),

		// Order preservation
		tt.Args("a = 1; b = 2; f();").Rets(
			[]pair{{"a", "1"}, {"b", "2"}, {"", "f()"}}, true),
		tt.Args("f()\ng()\nh()").Rets(
			[]pair{{"", "f()"}, {"", "g()"}, {"", "h()"}}, true),
		tt.Args("42;").Rets([]pair{{"", "42"}}, true),

		// Declarations
		tt.Args("const a = 1, b = 2;").Rets(
			[]pair{{"a", "1"}, {"b", "2"}}, true),
		tt.Args("let x;").Rets([]pair{{"x", ""}}, true),
		tt.Args("var x, y = 2").Rets([]pair{{"x", ""}, {"y", "2"}}, true),
		tt.Args("const xs = [1, 2], o = {a: 1};").Rets(
			[]pair{{"xs", "[1, 2]"}, {"o", "{a: 1}"}}, true),
		tt.Args("const f = (a, b) => a + b;").Rets(
			[]pair{{"f", "(a, b) => a + b"}}, true),
		tt.Args("const {a, b} = o;").Rets(
			[]pair{{"", "const {a, b} = o"}}, true),

		// Assignments
		tt.Args("x = y = 3").Rets([]pair{{"x", "y = 3"}}, true),
		tt.Args("a = 1, b = 2;").Rets([]pair{{"a", "1"}, {"b", "2"}}, true),
		tt.Args("a = (1, 2), b = 3").Rets(
			[]pair{{"a", "(1, 2)"}, {"b", "3"}}, true),
		tt.Args("o.p = 5").Rets([]pair{{"o.p", "5"}}, true),
		tt.Args("x += 1").Rets([]pair{{"", "x += 1"}}, true),
		tt.Args("a == 1").Rets([]pair{{"", "a == 1"}}, true),

		// Mixed comma sequences are kept whole
		tt.Args("myvar = 4, f(), yourvar = 6;").Rets(
			[]pair{{"", "myvar = 4, f(), yourvar = 6"}}, true),

		// Parentheses are kept
		tt.Args("(a, b)").Rets([]pair{{"", "(a, b)"}}, true),
		tt.Args("x = (1 + 2) * 3").Rets([]pair{{"x", "(1 + 2) * 3"}}, true),

		// Compound statements
		tt.Args("function f() { return 1; }\nf()").Rets(
			[]pair{{"", "function f() { return 1; }"}, {"", "f()"}}, true),
		tt.Args("if (a) { b = 1; c = 2; }").Rets(
			[]pair{{"", "if (a) { b = 1; c = 2; }"}}, true),
		tt.Args("a = 1;; b = 2").Rets([]pair{{"a", "1"}, {"b", "2"}}, true),
	})
}

func TestAtomize_Ranges(t *testing.T) {
	code := "a = 1; f();\nconst b = 2, c = 3;"
	frags, ok := Atomize(code)
	if !ok {
		t.Fatalf("Atomize(%q) not ready", code)
	}
	got := make([]string, len(frags))
	for i, f := range frags {
		got[i] = code[f.From:f.To]
		if f.Source != got[i] {
			t.Errorf("fragment %d has Source %q, want %q", i, f.Source, got[i])
		}
	}
	want := []string{"a = 1", "f()", "const b = 2", "c = 3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fragment ranges (-want +got):\n%s", diff)
	}
}

func TestParse_Error(t *testing.T) {
	_, err := Parse("a = 1;\nb = ;")
	e := diag.GetError(err, "parse error")
	if e == nil {
		t.Fatalf("Parse returned %v, want parse error", err)
	}
	if e.Context.Name != "[input]" {
		t.Errorf("got context name %q, want [input]", e.Context.Name)
	}
	if e.Context.From < len("a = 1;\n") {
		t.Errorf("error at %d, want on second line", e.Context.From)
	}
	if e.Message == "" {
		t.Errorf("parse error has empty message")
	}
}

func TestParse_Blank(t *testing.T) {
	frags, err := Parse("  ")
	if diff := cmp.Diff([]Fragment(nil), frags, cmpopts.EquateEmpty()); diff != "" || err != nil {
		t.Errorf("Parse(blank) = %v, %v; want no fragments, no error", frags, err)
	}
}
