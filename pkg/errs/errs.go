// Package errs provides structured errors that carry an operation trail, a
// kind that maps onto an HTTP status, and an optional offending parameter.
package errs

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Error is the error type used throughout the service layers.
type Error struct {
	// Op is the operation being performed, usually the name of the method
	// being invoked.
	Op Op
	// User is the user making the request, if any.
	User UserName
	// Kind is the class of error, such as validation failure.
	Kind Kind
	// Param is the parameter related to the error, if any.
	Param Parameter
	// Err is the underlying error that triggered this one.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Op describes an operation, e.g. "sessionService.AppendRow".
type Op string

// UserName is the name of the user that triggered the error.
type UserName string

// Parameter is the name of the request parameter that caused the error.
type Parameter string

// Kind defines the kind of error this is.
type Kind uint8

const (
	Other           Kind = iota // Unclassified error.
	Internal                    // Internal error or inconsistency.
	IO                          // External I/O error such as SMTP or LLM failure.
	InvalidRequest              // Malformed request.
	Validation                  // Input validation error.
	NotExist                    // Item does not exist.
	Unauthenticated             // Unauthenticated request.
	Unauthorized                // Unauthorized request.
	Unavailable                 // Capability not configured for this deployment.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Internal:
		return "internal error"
	case IO:
		return "external service error"
	case InvalidRequest:
		return "invalid request error"
	case Validation:
		return "input validation error"
	case NotExist:
		return "item does not exist"
	case Unauthenticated:
		return "unauthenticated request"
	case Unauthorized:
		return "unauthorized request"
	case Unavailable:
		return "capability unavailable"
	}

	return "unknown error kind"
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// E builds an error value from its arguments. There must be at least one
// argument or E panics. The type of each argument determines its meaning:
//
//	errs.Op         the operation being performed
//	errs.UserName   the user triggering the error
//	errs.Kind       the class of error
//	errs.Parameter  the offending parameter
//	string          treated as an error message
//	error           the underlying error
//
// If Kind is not given or is Other, the kind of a wrapped *Error is promoted.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errs.E with no arguments")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case UserName:
			e.User = arg
		case Kind:
			e.Kind = arg
		case Parameter:
			e.Param = arg
		case string:
			e.Err = pkgerrors.New(arg)
		case *Error:
			cp := *arg
			e.Err = &cp
		case error:
			if _, ok := arg.(stackTracer); ok {
				e.Err = arg
				continue
			}
			e.Err = pkgerrors.WithStack(arg)
		case nil:
			continue
		default:
			return fmt.Errorf("errs.E: unknown type %T, value %v in error call", arg, arg)
		}
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	if e.Kind == Other {
		e.Kind = prev.Kind
	}

	if e.Param == "" {
		e.Param = prev.Param
	}

	if e.User == "" {
		e.User = prev.User
	}

	return e
}

// Str returns an error that formats as the given text.
func Str(text string) error {
	return errors.New(text)
}

// KindIs reports whether err is an *Error of the given kind anywhere in its chain.
func KindIs(kind Kind, err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	if e.Kind != Other {
		return e.Kind == kind
	}

	if e.Err != nil {
		return KindIs(kind, e.Err)
	}

	return false
}

// KindOf returns the most specific kind found in the error chain.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return Other
	}

	if e.Kind != Other {
		return e.Kind
	}

	return KindOf(e.Err)
}

// OpStack returns the trail of operations recorded in the error chain,
// outermost first.
func OpStack(err error) []string {
	var ops []string

	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}

		if e.Op != "" {
			ops = append(ops, string(e.Op))
		}

		err = e.Err
	}

	return ops
}

// ParamOf returns the first parameter recorded in the error chain.
func ParamOf(err error) Parameter {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}

		if e.Param != "" {
			return e.Param
		}

		err = e.Err
	}

	return ""
}

// Trace renders the op trail of an error as a single string, useful in logs.
func Trace(err error) string {
	return strings.Join(OpStack(err), ": ")
}
