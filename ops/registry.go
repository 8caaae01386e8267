// Package ops holds the fixed set of arithmetic operations served by arith.
//
// The registry is built once at package initialization and never mutated,
// so lookups are safe from any number of goroutines without locking.
package ops

import (
	"math"
	"slices"
)

// Operation names.
const (
	Add  = "ADD"
	Sub  = "SUB"
	Mult = "MULT"
	Div  = "DIV"
	Sqr  = "SQR"
	Sqrt = "SQRT"
)

// Arity describes how many arguments an operation accepts.
type Arity int

const (
	// Variadic operations accept any number of arguments, including none.
	Variadic Arity = iota
	// Unary operations accept exactly one argument.
	Unary
)

func (a Arity) String() string {
	switch a {
	case Variadic:
		return "variadic"
	case Unary:
		return "unary"
	default:
		return "unknown"
	}
}

// Operation is a named arithmetic function with its argument rule.
type Operation struct {
	Name  string
	Arity Arity

	validate func(args []int64) error
	compute  func(args []int64) int64
}

// Validate returns nil when args are acceptable for the operation,
// or one of the package errors describing why they are not.
func (o Operation) Validate(args []int64) error {
	if o.Arity == Unary {
		switch {
		case len(args) > 1:
			return ErrTooManyArguments
		case len(args) == 0:
			return ErrMissingArgument
		}
	}
	if o.validate != nil {
		return o.validate(args)
	}
	return nil
}

// Compute returns the result for args.
// The result is only meaningful when Validate returned nil for the same args.
func (o Operation) Compute(args []int64) int64 {
	return o.compute(args)
}

// Apply validates args and, if they pass, computes the result.
func (o Operation) Apply(args []int64) (int64, error) {
	if err := o.Validate(args); err != nil {
		return 0, err
	}
	return o.Compute(args), nil
}

var registry = map[string]Operation{
	Add: {
		Name:  Add,
		Arity: Variadic,
		compute: func(args []int64) int64 {
			var sum int64
			for _, v := range args {
				sum += v
			}
			return sum
		},
	},
	Sub: {
		Name:    Sub,
		Arity:   Variadic,
		compute: fold(0, func(a, b int64) int64 { return a - b }),
	},
	Mult: {
		Name:    Mult,
		Arity:   Variadic,
		compute: fold(1, func(a, b int64) int64 { return a * b }),
	},
	Div: {
		Name:     Div,
		Arity:    Variadic,
		validate: rejectZero,
		compute:  fold(1, func(a, b int64) int64 { return a / b }),
	},
	Sqr: {
		Name:  Sqr,
		Arity: Unary,
		compute: func(args []int64) int64 {
			return args[0] * args[0]
		},
	},
	Sqrt: {
		Name:  Sqrt,
		Arity: Unary,
		validate: func(args []int64) error {
			if args[0] < 0 {
				return ErrNegativeArgument
			}
			return nil
		},
		compute: func(args []int64) int64 {
			return isqrt(args[0])
		},
	},
}

// Lookup returns the operation registered under name.
// Matching is exact and case-sensitive.
func Lookup(name string) (Operation, bool) {
	op, ok := registry[name]
	return op, ok
}

// Names returns the registered operation names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// fold reduces args left to right with fn, starting from the first element.
// An empty args slice yields identity.
func fold(identity int64, fn func(a, b int64) int64) func(args []int64) int64 {
	return func(args []int64) int64 {
		if len(args) == 0 {
			return identity
		}
		acc := args[0]
		for _, v := range args[1:] {
			acc = fn(acc, v)
		}
		return acc
	}
}

func rejectZero(args []int64) error {
	if slices.Contains(args, 0) {
		return ErrDivisionByZero
	}
	return nil
}

// isqrt returns floor(sqrt(n)) for n >= 0.
// The float estimate is corrected with division so large values never overflow.
func isqrt(n int64) int64 {
	r := int64(math.Sqrt(float64(n)))
	for r > 0 && r > n/r {
		r--
	}
	for r+1 <= n/(r+1) {
		r++
	}
	return r
}
