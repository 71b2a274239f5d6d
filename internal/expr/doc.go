// Package expr models typed member-access and filter expressions as a small
// closed set of tree variants.
//
// Node is a sealed interface using the marker method pattern. Consumers
// (field and predicate parsers) dispatch with exhaustive type switches:
//
//	switch n := node.(type) {
//	case Member:      // e.Age
//	case Const:       // 18, "a", [1, 2], null
//	case Comparison:  // e.Age > 18
//	case Logical:     // a && b, a || b
//	case Not:         // !(a)
//	case Conversion:  // int(e.Age)
//	case Call:        // e.Name.Contains("a"), list.Contains([1, 2], e.Id)
//	case Alias:       // e.Name as DisplayName
//	}
//
// Trees are produced two ways:
//
//   - the builder API (Eq, Gt, And, Negate, ...) over members obtained from a
//     Param bound to a Go struct type
//   - Parse, which reads CUE expression syntax with cuelang.org/go/cue/parser
//     and maps the CUE AST onto the variants above
//
// Parse accepts a lambda-style parameter prefix ("e.Age") or bare member
// names ("Age"). The parameter identifier itself is not checked.
package expr
