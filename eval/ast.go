package eval

import "github.com/canzero/sigdag/value"

// Node is any expression AST node produced by the parser. The AST is built
// once per node at initialization and held by the scheduler's Processor;
// evaluation only
// ever borrows an environment (spec design note: "parse once... evaluation
// consumes a borrowed environment").
type Node interface {
	eval(env Env) (value.Value, error)
}

// IntLit is an integer literal, e.g. 42.
type IntLit struct{ Value int64 }

// FloatLit is a decimal literal, e.g. 3.6.
type FloatLit struct{ Value float64 }

// StringLit is a double-quoted string literal.
type StringLit struct{ Value string }

// BoolLit is true/false.
type BoolLit struct{ Value bool }

// Ident resolves a name against the environment.
type Ident struct{ Name string }

// Unary is a prefix operator: -x or !x.
type Unary struct {
	Op   string
	Expr Node
}

// Binary is an infix operator over two operands.
type Binary struct {
	Op          string
	Left, Right Node
}

// Ternary is c ? a : b.
type Ternary struct {
	Cond, Then, Else Node
}

// Call invokes one of the fixed built-in functions.
type Call struct {
	Name string
	Args []Node
}
