package predicate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Combinator joins the children of a Group.
type Combinator int

const (
	CombineAnd Combinator = iota + 1
	CombineOr
)

func (c Combinator) String() string {
	switch c {
	case CombineAnd:
		return "AND"
	case CombineOr:
		return "OR"
	default:
		return fmt.Sprintf("Combinator(%d)", int(c))
	}
}

// Flip swaps AND and OR.
func (c Combinator) Flip() Combinator {
	if c == CombineAnd {
		return CombineOr
	}
	return CombineAnd
}

// Group is an AND/OR combination of predicates and nested groups.
//
// Equality ignores child order: two groups are equal when they share a
// combinator and hold the same multiset of children. The hash mixes the
// combinator with the sum of the child hashes: order-independent among
// siblings, distinct for each level of nesting.
type Group struct {
	comb     Combinator
	children []Node
	hash     uint64
}

func (Group) predicateNode() {}

// NewGroup creates a Group. Children must be non-empty and non-nil.
func NewGroup(comb Combinator, children ...Node) (Group, error) {
	if comb != CombineAnd && comb != CombineOr {
		return Group{}, reqerr.InvalidArgument("unknown combinator %d", int(comb))
	}
	if len(children) == 0 {
		return Group{}, reqerr.InvalidArgument("%s group must have at least one child", comb)
	}
	var sum uint64
	for i, c := range children {
		if c == nil || isZero(c) {
			return Group{}, reqerr.InvalidArgument("%s group child %d is empty", comb, i)
		}
		sum += c.Hash()
	}
	h := ir.HashSequence(ir.DomainGroup, ir.HashWithDomain(ir.DomainGroup, comb.String()), sum)
	return Group{comb: comb, children: slices.Clone(children), hash: h}, nil
}

// And combines children with AND.
func And(children ...Node) (Group, error) {
	return NewGroup(CombineAnd, children...)
}

// Or combines children with OR.
func Or(children ...Node) (Group, error) {
	return NewGroup(CombineOr, children...)
}

// Must panics if err is non-nil and returns v otherwise.
// Use only in tests or for inputs known to be valid.
func Must[T Node](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func isZero(n Node) bool {
	switch x := n.(type) {
	case Predicate:
		return x.name == ""
	case Group:
		return len(x.children) == 0
	}
	return false
}

// Combinator returns AND or OR.
func (g Group) Combinator() Combinator { return g.comb }

// Children returns a copy of the children in construction order.
func (g Group) Children() []Node { return slices.Clone(g.children) }

// Len returns the number of direct children.
func (g Group) Len() int { return len(g.children) }

// IsZero reports whether g is the zero Group.
func (g Group) IsZero() bool { return len(g.children) == 0 }

// Hash returns the order-independent structural hash.
func (g Group) Hash() uint64 { return g.hash }

// Predicates returns every predicate in the tree, depth-first.
func (g Group) Predicates() []Predicate {
	var out []Predicate
	for _, c := range g.children {
		switch x := c.(type) {
		case Predicate:
			out = append(out, x)
		case Group:
			out = append(out, x.Predicates()...)
		}
	}
	return out
}

// Equal reports whether both groups share a combinator and the same
// multiset of children.
func (g Group) Equal(other Group) bool {
	if g.hash != other.hash || g.comb != other.comb || len(g.children) != len(other.children) {
		return false
	}
	used := make([]bool, len(other.children))
outer:
	for _, a := range g.children {
		for j, b := range other.children {
			if !used[j] && EqualNodes(a, b) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func (g Group) String() string {
	parts := make([]string, len(g.children))
	for i, c := range g.children {
		parts[i] = c.String()
		if _, nested := c.(Group); nested {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, " "+g.comb.String()+" ")
}

// Negate applies De Morgan: the combinator flips and every child is negated.
// It fails when a predicate has no inverse operator.
func (g Group) Negate() (Group, error) {
	children := make([]Node, len(g.children))
	for i, c := range g.children {
		n, err := negate(c)
		if err != nil {
			return Group{}, err
		}
		children[i] = n
	}
	return NewGroup(g.comb.Flip(), children...)
}

func negate(n Node) (Node, error) {
	switch x := n.(type) {
	case Predicate:
		return x.Negate()
	case Group:
		return x.Negate()
	default:
		return nil, reqerr.InvalidArgument("unknown node %T", n)
	}
}

// EqualNodes compares two nodes structurally.
func EqualNodes(a, b Node) bool {
	switch x := a.(type) {
	case Predicate:
		y, ok := b.(Predicate)
		return ok && x.Equal(y)
	case Group:
		y, ok := b.(Group)
		return ok && x.Equal(y)
	default:
		return a == nil && b == nil
	}
}
