package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/reqkey/internal/ir"
)

// MaxPortableDepth is the deepest group nesting Validate accepts silently.
const MaxPortableDepth = 8

// MaxPortableInList is the largest In/NotIn list Validate accepts silently.
// SQL Server caps a statement at 2100 parameters and Oracle caps IN lists
// at 1000 elements.
const MaxPortableInList = 1000

// ValidationResult contains the portability analysis of a filter.
type ValidationResult struct {
	// IsPortable is true when the filter renders the same way on every
	// supported dialect.
	IsPortable bool

	// Warnings lists the non-portable constructs found. Empty when
	// IsPortable is true.
	Warnings []string
}

// Validate checks a filter tree against the portable rules:
//  1. No NULL checks - NULL ordering and comparison differ across engines
//  2. LIKE takes a string pattern containing a wildcard
//  3. IN lists stay under MaxPortableInList elements
//  4. Nesting stays under MaxPortableDepth
//  5. No single-child or duplicate-child groups
//
// Non-portable filters still build and render; warnings are informational.
//
// Validate is a pure function with no side effects.
func Validate(n Node) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateNode(n, 1)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateNode(n Node, depth int) {
	switch node := n.(type) {
	case nil:
		v.addWarning("nil filter node - filters require a predicate or group")
	case Predicate:
		v.validatePredicate(node)
	case *Predicate:
		if node == nil {
			v.addWarning("nil filter node - filters require a predicate or group")
			return
		}
		v.validatePredicate(*node)
	case Group:
		v.validateGroup(node, depth)
	case *Group:
		if node == nil {
			v.addWarning("nil filter node - filters require a predicate or group")
			return
		}
		v.validateGroup(*node, depth)
	default:
		v.addWarning("Unknown filter node type: %T - portability cannot be verified", n)
	}
}

func (v *validator) validateGroup(g Group, depth int) {
	// Rule 4: bounded nesting
	if depth == MaxPortableDepth+1 {
		v.addWarning("Group nesting exceeds depth %d - some engines limit expression depth", MaxPortableDepth)
	}

	// Rule 5: no redundant grouping
	if g.Len() == 1 && depth > 1 {
		v.addWarning("Nested %s group with one child - the group adds nothing", g.comb)
	}
	for i, a := range g.children {
		for _, b := range g.children[:i] {
			if EqualNodes(a, b) {
				v.addWarning("Duplicate condition %q in %s group", a.String(), g.comb)
				break
			}
		}
	}

	for _, c := range g.children {
		v.validateNode(c, depth+1)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch p.op {
	// Rule 1: no NULL checks
	case IsNull, IsNotNull:
		v.addWarning("Field '%s' checked with %s - NULL semantics differ between engines", p.name, p.op.Symbol())

	// Rule 2: string patterns with wildcards
	case Like, NotLike:
		s, ok := p.value.(ir.String)
		if !ok {
			v.addWarning("Field '%s' uses %s with a %s pattern - patterns must be strings", p.name, p.op.Symbol(), ir.Kind(p.value))
			return
		}
		if !strings.ContainsAny(string(s), "%_") {
			v.addWarning("Field '%s' uses %s without a wildcard - use Equal instead", p.name, p.op.Symbol())
		}

	// Rule 3: bounded IN lists
	case In, NotIn:
		if l, ok := p.value.(ir.List); ok && len(l) > MaxPortableInList {
			v.addWarning("Field '%s' uses %s with %d values - lists over %d are not portable", p.name, p.op.Symbol(), len(l), MaxPortableInList)
		}
	}
}
