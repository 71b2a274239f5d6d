package request

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/ir"
	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/predicate"
	"github.com/roach88/reqkey/internal/reqerr"
)

// Statement is rendered statement text plus positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Builder renders requests into statements. A request borrows its
// builder; the builder is never part of the request's identity.
type Builder interface {
	Build(r *Request) (Statement, error)
}

// Request is an immutable description of one database operation.
//
// Identity is the target name, the kind and every present component.
// The target type, when known, is carried for collaborators but does not
// take part in identity, so a request built for a type equals one built
// for the type's table name.
//
// Absent and explicitly empty components are the same thing: empty field
// or ordering lists, a zero Group, a zero limit and blank hints are all
// stored as absent and contribute nothing to the hash.
//
// Thread-safety: a Request is safe for concurrent use. The hash is
// computed once, on first use.
type Request struct {
	name    string
	typ     reflect.Type
	spec    KindSpec
	fields  []field.Field
	where   predicate.Group
	orderBy []field.OrderField
	limit   int
	hints   string
	builder Builder

	once sync.Once
	hash uint64
}

// New creates a request for an explicit target name.
func New(kind Kind, name string, opts ...Option) (*Request, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, reqerr.InvalidArgument("%s request: target name must not be empty", kind)
	}
	return build(kind, name, nil, opts)
}

// NewFor creates a request for type t, naming the target through
// resolver (mapping.DefaultResolver when nil). The resolver is called
// exactly once; its error is returned as UnmappedType.
func NewFor(kind Kind, resolver mapping.Resolver, t reflect.Type, opts ...Option) (*Request, error) {
	if t == nil {
		return nil, reqerr.InvalidArgument("%s request: target type must not be nil", kind)
	}
	if resolver == nil {
		resolver = mapping.DefaultResolver
	}
	name, err := resolver.Resolve(t)
	if err != nil {
		if reqerr.IsUnmappedType(err) {
			return nil, err
		}
		return nil, reqerr.UnmappedType(t.String(), err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, reqerr.UnmappedType(t.String(), fmt.Errorf("resolver returned an empty name"))
	}
	return build(kind, name, t, opts)
}

// NewOf is NewFor for T.
func NewOf[T any](kind Kind, resolver mapping.Resolver, opts ...Option) (*Request, error) {
	return NewFor(kind, resolver, reflect.TypeFor[T](), opts...)
}

func build(kind Kind, name string, t reflect.Type, opts []Option) (*Request, error) {
	spec, ok := LookupKind(kind)
	if !ok {
		return nil, reqerr.InvalidArgument("unknown request kind %q", kind)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r := &Request{name: name, typ: t, spec: spec}
	if err := r.apply(&o); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) apply(o *options) error {
	if o.err != nil {
		return o.err
	}
	kind := r.spec.Kind

	if o.field != nil && len(o.fields) > 0 {
		return reqerr.InvalidArgument("%s request: use either a field or a field list", kind)
	}
	var present Component
	if len(o.fields) > 0 {
		present |= ComponentFields
		r.fields = slices.Clone(o.fields)
	}
	if o.field != nil {
		present |= ComponentField
		r.fields = []field.Field{*o.field}
	}
	for i, f := range r.fields {
		if f.IsZero() {
			return reqerr.InvalidArgument("%s request: field %d is empty", kind, i)
		}
	}
	if !o.where.IsZero() {
		present |= ComponentWhere
		r.where = o.where
	}
	if len(o.orderBy) > 0 {
		present |= ComponentOrderBy
		r.orderBy = slices.Clone(o.orderBy)
		for i, of := range r.orderBy {
			if of.Field().IsZero() {
				return reqerr.InvalidArgument("%s request: order field %d is empty", kind, i)
			}
		}
	}
	if o.limit < 0 {
		return reqerr.InvalidArgument("%s request: limit must not be negative, got %d", kind, o.limit)
	}
	if o.limit > 0 {
		present |= ComponentLimit
		r.limit = o.limit
	}
	if h := strings.TrimSpace(o.hints); h != "" {
		present |= ComponentHints
		r.hints = h
	}
	r.builder = o.builder

	if extra := present &^ r.spec.Accepts; extra != 0 {
		return reqerr.InvalidArgument("%s request does not accept %s (accepts %s)", kind, extra, r.spec.Accepts)
	}
	if missing := r.spec.Requires &^ present; missing != 0 {
		return reqerr.InvalidArgument("%s request requires %s", kind, missing)
	}
	return nil
}

// Name returns the target table name.
func (r *Request) Name() string { return r.name }

// Type returns the target type, or nil for name-based requests.
func (r *Request) Type() reflect.Type { return r.typ }

// Kind returns the operation kind.
func (r *Request) Kind() Kind { return r.spec.Kind }

// Spec returns the kind's declaration.
func (r *Request) Spec() KindSpec { return r.spec }

// Fields returns a copy of the field list, or nil when absent.
func (r *Request) Fields() []field.Field { return slices.Clone(r.fields) }

// Field returns the single aggregate field of Average/Min/Max/Sum kinds.
func (r *Request) Field() (field.Field, bool) {
	if !r.spec.Accepts.Has(ComponentField) || len(r.fields) != 1 {
		return field.Field{}, false
	}
	return r.fields[0], true
}

// Where returns the filter group and whether one is present.
func (r *Request) Where() (predicate.Group, bool) { return r.where, !r.where.IsZero() }

// OrderBy returns a copy of the ordering list, or nil when absent.
func (r *Request) OrderBy() []field.OrderField { return slices.Clone(r.orderBy) }

// Limit returns the row limit and whether one is present.
func (r *Request) Limit() (int, bool) { return r.limit, r.limit > 0 }

// Hints returns the trimmed hints, or "" when absent.
func (r *Request) Hints() string { return r.hints }

// Builder returns the borrowed statement builder, or nil.
func (r *Request) Builder() Builder { return r.builder }

// Statement renders r with its borrowed builder.
func (r *Request) Statement() (Statement, error) {
	if r.builder == nil {
		return Statement{}, reqerr.InvalidArgument("%s request for %s has no statement builder", r.spec.Kind, r.name)
	}
	return r.builder.Build(r)
}

// WithFields returns a copy of r with its field list replaced.
// The copy computes its own hash; r is unchanged.
func (r *Request) WithFields(fields ...field.Field) (*Request, error) {
	o := r.options()
	o.fields, o.field = fields, nil
	if r.spec.Accepts.Has(ComponentField) && len(fields) == 1 {
		o.fields, o.field = nil, &fields[0]
	}
	out := &Request{name: r.name, typ: r.typ, spec: r.spec}
	if err := out.apply(&o); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Request) options() options {
	o := options{
		where:   r.where,
		orderBy: r.orderBy,
		limit:   r.limit,
		hints:   r.hints,
		builder: r.builder,
	}
	if f, ok := r.Field(); ok {
		o.field = &f
	} else {
		o.fields = r.fields
	}
	return o
}

// Hash returns the structural hash: the hash of name and kind plus the
// hash of each present component, combined by wrapping addition.
func (r *Request) Hash() uint64 {
	r.once.Do(func() {
		r.hash = r.computeHash()
	})
	return r.hash
}

func (r *Request) computeHash() uint64 {
	h := ir.HashWithDomain(ir.DomainRequest, r.name, string(r.spec.Kind))
	if len(r.fields) > 0 {
		h += field.HashAll(r.fields)
	}
	if !r.where.IsZero() {
		h += r.where.Hash()
	}
	if len(r.orderBy) > 0 {
		h += field.HashOrder(r.orderBy)
	}
	if r.limit > 0 {
		h += ir.HashWithDomain(ir.DomainLimit, strconv.Itoa(r.limit))
	}
	if r.hints != "" {
		h += ir.HashWithDomain(ir.DomainHints, r.hints)
	}
	return h
}

// Equal reports whether r and other have the same hash. See HashComparer
// for the collision trade-off and StructuralComparer for a strict check.
func (r *Request) Equal(other *Request) bool {
	return HashComparer{}.Equal(r, other)
}

// String is for diagnostics only.
func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s)", r.spec.Kind, r.name)
	if len(r.fields) > 0 {
		fmt.Fprintf(&b, " fields=[%s]", strings.Join(field.Names(r.fields), ", "))
	}
	if !r.where.IsZero() {
		fmt.Fprintf(&b, " where=(%s)", r.where)
	}
	if len(r.orderBy) > 0 {
		parts := make([]string, len(r.orderBy))
		for i, of := range r.orderBy {
			parts[i] = of.String()
		}
		fmt.Fprintf(&b, " orderBy=[%s]", strings.Join(parts, ", "))
	}
	if r.limit > 0 {
		fmt.Fprintf(&b, " limit=%d", r.limit)
	}
	if r.hints != "" {
		fmt.Fprintf(&b, " hints=%q", r.hints)
	}
	return b.String()
}
