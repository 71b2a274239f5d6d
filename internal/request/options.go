package request

import (
	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/predicate"
)

// options collects Option values before they are checked against the kind.
type options struct {
	fields  []field.Field
	field   *field.Field
	where   predicate.Group
	orderBy []field.OrderField
	limit   int
	hints   string
	builder Builder
	err     error
}

// Option sets one optional request component.
type Option func(*options)

// WithFields sets the projection list. An empty list is the same as none.
func WithFields(fields ...field.Field) Option {
	return func(o *options) {
		o.fields = fields
	}
}

// WithFieldNames sets the projection list from raw names.
func WithFieldNames(names ...string) Option {
	return func(o *options) {
		if len(names) == 0 {
			return
		}
		fields, err := field.FromNames(names...)
		if err != nil {
			o.err = err
			return
		}
		for f := range fields {
			o.fields = append(o.fields, f)
		}
	}
}

// WithField sets the single field an aggregate kind operates on.
func WithField(f field.Field) Option {
	return func(o *options) {
		o.field = &f
	}
}

// WithWhere sets the filter. A zero Group is the same as none.
func WithWhere(g predicate.Group) Option {
	return func(o *options) {
		o.where = g
	}
}

// WithWhereNode sets the filter from a predicate or group; a single
// predicate is wrapped in an AND group.
func WithWhereNode(n predicate.Node) Option {
	return func(o *options) {
		switch x := n.(type) {
		case nil:
		case predicate.Group:
			o.where = x
		default:
			g, err := predicate.And(x)
			if err != nil {
				o.err = err
				return
			}
			o.where = g
		}
	}
}

// WithOrderBy sets the ordering list. An empty list is the same as none.
func WithOrderBy(orders ...field.OrderField) Option {
	return func(o *options) {
		o.orderBy = orders
	}
}

// WithLimit sets the row limit. Zero is the same as none.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithHints sets table hints. Blank hints are the same as none.
// Whether a backend supports hints is decided by the statement builder.
func WithHints(hints string) Option {
	return func(o *options) {
		o.hints = hints
	}
}

// WithBuilder lends the request a statement builder.
func WithBuilder(b Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}
