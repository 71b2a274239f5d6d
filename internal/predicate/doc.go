// Package predicate provides the filter model of a request.
//
// A Predicate is one column/operator/value condition; a Group joins
// predicates and nested groups with AND or OR. Both are immutable values
// implementing the sealed Node interface.
//
// Equality is structural. Group equality and hashing ignore child order:
//
//	And(p1, p2) equals And(p2, p1)
//
// because a group's hash is the wrapping sum of its children's hashes and
// its Equal matches children as a multiset. In and NotIn values compare the
// same way; Between values keep their order.
//
// Filters can be built directly (New, And, Or), from loose name/value
// input (FromKeyValue, FromDynamic), or from expression trees
// (FromBinaryExpression, FromExpressionTree, FromExpressionSource).
// Validate reports constructs that do not render portably.
package predicate
