// Package inspect renders values for display in the console.
package inspect

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/mattn/go-runewidth"
)

// NoPretty can be passed to Repr to suppress pretty-printing.
const NoPretty = math.MinInt32

const (
	// Containers nested deeper than this are elided.
	maxDepth = 6
	// Containers whose single-line form is at most this wide are not broken
	// up when pretty-printing.
	compactWidth = 60
)

// Repr returns the representation of a value as shown in the console. The
// value may be a JavaScript value or a Go value. If indent is at least 0,
// large containers are broken into multiple lines with their elements
// indented by indent+2 spaces.
func Repr(v any, indent int) string {
	p := printer{ancestors: map[any]bool{}}
	return p.repr(v, indent, 0)
}

// ToString is like Repr, but returns strings as they are.
func ToString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case goja.Value:
		if s, ok := v.Export().(string); ok && !isObject(v) {
			return s
		}
	}
	return Repr(v, NoPretty)
}

// Truncate shortens s to fit in width columns, marking the cut with an
// ellipsis. Only the first line of s is kept when s has several. A width of 0
// or less means no limit.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[:i] + " …"
	}
	return runewidth.Truncate(s, width, "…")
}

type printer struct {
	ancestors map[any]bool
}

func isObject(v goja.Value) bool {
	_, ok := v.(*goja.Object)
	return ok
}

func (p *printer) repr(v any, indent, depth int) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case *goja.Object:
		if v == nil {
			return "null"
		}
		return p.object(v, indent, depth)
	case goja.Value:
		return primitive(v)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatNumber(v)
	case error:
		return "<error: " + v.Error() + ">"
	case []any:
		if depth >= maxDepth {
			return "[…]"
		}
		items := make([]string, len(v))
		for i, elem := range v {
			items[i] = p.repr(elem, deeper(indent), depth+1)
		}
		return join("[", "]", items, indent)
	case map[string]any:
		if depth >= maxDepth {
			return "{…}"
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = key(k) + ": " + p.repr(v[k], deeper(indent), depth+1)
		}
		return join("{", "}", items, indent)
	}
	return p.reflect(reflect.ValueOf(v), indent, depth)
}

// Handles Go values of types not covered by the cases in repr.
func (p *printer) reflect(rv reflect.Value, indent, depth int) string {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "null"
		}
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return p.repr(elems, indent, depth)
	case reflect.Map:
		if rv.IsNil() {
			return "null"
		}
		m := make(map[string]any, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			m[fmt.Sprint(it.Key().Interface())] = it.Value().Interface()
		}
		return p.repr(m, indent, depth)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatNumber(rv.Float())
	case reflect.Func:
		return "<function>"
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
	}
	return fmt.Sprint(rv.Interface())
}

func primitive(v goja.Value) string {
	switch {
	case goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if s, ok := v.Export().(string); ok {
		return strconv.Quote(s)
	}
	return v.String()
}

func (p *printer) object(o *goja.Object, indent, depth int) string {
	// Promises report the class name "Object".
	if _, ok := o.Export().(*goja.Promise); ok && o.ClassName() == "Object" {
		return "<Promise>"
	}
	switch o.ClassName() {
	case "Function":
		if name := o.Get("name"); name != nil && name.String() != "" {
			return "<function " + name.String() + ">"
		}
		return "<function>"
	case "Error":
		return "<" + o.String() + ">"
	case "Array", "Object":
	default:
		return o.String()
	}

	if p.ancestors[o] {
		return "<cycle>"
	}
	p.ancestors[o] = true
	defer delete(p.ancestors, o)

	if o.ClassName() == "Array" {
		if depth >= maxDepth {
			return "[…]"
		}
		n := int(o.Get("length").ToInteger())
		items := make([]string, n)
		for i := 0; i < n; i++ {
			elem := o.Get(strconv.Itoa(i))
			if elem == nil {
				elem = goja.Undefined()
			}
			items[i] = p.repr(elem, deeper(indent), depth+1)
		}
		return join("[", "]", items, indent)
	}

	if depth >= maxDepth {
		return "{…}"
	}
	keys := o.Keys()
	items := make([]string, len(keys))
	for i, k := range keys {
		items[i] = key(k) + ": " + p.repr(o.Get(k), deeper(indent), depth+1)
	}
	return join("{", "}", items, indent)
}

func deeper(indent int) int {
	if indent < 0 {
		return indent
	}
	return indent + 2
}

func join(open, close string, items []string, indent int) string {
	single := open + strings.Join(items, ", ") + close
	if indent < 0 || len(items) == 0 ||
		(runewidth.StringWidth(single) <= compactWidth && !strings.Contains(single, "\n")) {
		return single
	}
	var sb strings.Builder
	sb.WriteString(open)
	for _, item := range items {
		sb.WriteString("\n" + strings.Repeat(" ", indent+2) + item + ",")
	}
	sb.WriteString("\n" + strings.Repeat(" ", indent) + close)
	return sb.String()
}

var identifierKey = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func key(k string) string {
	if identifierKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
