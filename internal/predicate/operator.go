package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Operator is a predicate comparison operator.
type Operator int

const (
	Equal Operator = iota + 1
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Like
	NotLike
	Between
	NotBetween
	In
	NotIn
	IsNull
	IsNotNull
)

// arity describes the value shape an operator requires.
type arity int

const (
	arityScalar arity = iota // exactly one non-null scalar
	arityPair                // a list of exactly two non-null scalars
	arityList                // a non-empty list of non-null scalars
	arityNone                // no value
)

type operatorInfo struct {
	name    string
	symbol  string
	arity   arity
	inverse Operator
}

var operators = map[Operator]operatorInfo{
	Equal:              {"Equal", "=", arityScalar, NotEqual},
	NotEqual:           {"NotEqual", "<>", arityScalar, Equal},
	LessThan:           {"LessThan", "<", arityScalar, GreaterThanOrEqual},
	LessThanOrEqual:    {"LessThanOrEqual", "<=", arityScalar, GreaterThan},
	GreaterThan:        {"GreaterThan", ">", arityScalar, LessThanOrEqual},
	GreaterThanOrEqual: {"GreaterThanOrEqual", ">=", arityScalar, LessThan},
	Like:               {"Like", "LIKE", arityScalar, 0},
	NotLike:            {"NotLike", "NOT LIKE", arityScalar, 0},
	Between:            {"Between", "BETWEEN", arityPair, NotBetween},
	NotBetween:         {"NotBetween", "NOT BETWEEN", arityPair, Between},
	In:                 {"In", "IN", arityList, NotIn},
	NotIn:              {"NotIn", "NOT IN", arityList, In},
	IsNull:             {"IsNull", "IS NULL", arityNone, IsNotNull},
	IsNotNull:          {"IsNotNull", "IS NOT NULL", arityNone, IsNull},
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, 0, len(operators))
	for op := Equal; op <= IsNotNull; op++ {
		out = append(out, op)
	}
	return out
}

// Valid reports whether op is a declared operator.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

func (op Operator) String() string {
	if info, ok := operators[op]; ok {
		return info.name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Symbol returns the generic SQL spelling, e.g. "<>" or "NOT IN".
func (op Operator) Symbol() string {
	return operators[op].symbol
}

// Inverse returns the logical negation of op.
// Like and NotLike have no inverse.
func (op Operator) Inverse() (Operator, bool) {
	inv := operators[op].inverse
	return inv, inv != 0
}

// Hash returns the structural hash of op.
func (op Operator) Hash() uint64 {
	return ir.HashWithDomain(ir.DomainOperator, op.String())
}

// ParseOperator accepts an operator name ("GreaterThan", case-insensitive)
// or its symbol (">", "==", "!=", "NOT IN").
func ParseOperator(s string) (Operator, error) {
	key := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	switch key {
	case "==":
		return Equal, nil
	case "!=":
		return NotEqual, nil
	}
	for _, op := range Operators() {
		info := operators[op]
		if key == strings.ToUpper(info.name) || key == info.symbol {
			return op, nil
		}
	}
	return 0, reqerr.InvalidArgument("unknown operator %q", s)
}
