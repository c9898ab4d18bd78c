// Package result contains the tagged outcome of compiling or running code.
//
// A Result is exactly one of Success, Failure and Inert. The absence of an
// outcome, such as that of a statement that has not run yet, is represented
// by a nil Result.
package result

// Result is the outcome of compiling or running a piece of code.
type Result interface {
	// Kind returns the case of the Result.
	Kind() Kind
	// Map applies f to the value of a Success, wrapping the return value in a
	// Success. Failure and Inert are returned unchanged.
	Map(f func(any) any) Result
	// FlatMap applies f to the value of a Success and returns what f returns.
	// Failure and Inert are returned unchanged.
	FlatMap(f func(any) Result) Result

	isResult()
}

// Kind identifies a case of Result.
type Kind uint8

// Possible values of Kind. The zero value NoKind is what KindOf returns for a
// nil Result.
const (
	NoKind Kind = iota
	SuccessKind
	FailureKind
	InertKind
)

var kindNames = [...]string{"", "success", "failure", "inert"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Success wraps the value of a successful computation.
type Success struct{ Value any }

// Failure wraps the error of a failed computation.
type Failure struct{ Err error }

// Inert marks a computation that was deliberately not carried out.
type Inert struct{}

func (Success) Kind() Kind { return SuccessKind }
func (Failure) Kind() Kind { return FailureKind }
func (Inert) Kind() Kind   { return InertKind }

func (r Success) Map(f func(any) any) Result        { return Success{f(r.Value)} }
func (r Success) FlatMap(f func(any) Result) Result { return f(r.Value) }
func (r Failure) Map(func(any) any) Result          { return r }
func (r Failure) FlatMap(func(any) Result) Result   { return r }
func (r Inert) Map(func(any) any) Result            { return r }
func (r Inert) FlatMap(func(any) Result) Result     { return r }

func (Success) isResult() {}
func (Failure) isResult() {}
func (Inert) isResult()   {}

// Of returns Failure{err} if err is not nil, and Success{v} otherwise.
func Of(v any, err error) Result {
	if err != nil {
		return Failure{err}
	}
	return Success{v}
}

// KindOf returns the Kind of r, or NoKind if r is nil.
func KindOf(r Result) Kind {
	if r == nil {
		return NoKind
	}
	return r.Kind()
}

// IsSuccess reports whether r is a Success.
func IsSuccess(r Result) bool { return KindOf(r) == SuccessKind }

// IsFailure reports whether r is a Failure.
func IsFailure(r Result) bool { return KindOf(r) == FailureKind }

// IsInert reports whether r is Inert.
func IsInert(r Result) bool { return KindOf(r) == InertKind }

// Value returns the value of r if it is a Success.
func Value(r Result) (any, bool) {
	if s, ok := r.(Success); ok {
		return s.Value, true
	}
	return nil, false
}

// Err returns the error of r if it is a Failure, and nil otherwise.
func Err(r Result) error {
	if f, ok := r.(Failure); ok {
		return f.Err
	}
	return nil
}
