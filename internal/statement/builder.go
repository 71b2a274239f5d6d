package statement

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/predicate"
	"github.com/roach88/reqkey/internal/reqerr"
	"github.com/roach88/reqkey/internal/request"
)

// Statement is rendered SQL plus its positional arguments.
type Statement = request.Statement

// Builder renders a request into a Statement.
type Builder = request.Builder

var aggregates = map[request.Shape]struct {
	fn    string
	alias string
}{
	request.ShapeAverage: {"AVG", "AverageValue"},
	request.ShapeMin:     {"MIN", "MinValue"},
	request.ShapeMax:     {"MAX", "MaxValue"},
	request.ShapeSum:     {"SUM", "SumValue"},
}

// SQLBuilder renders requests for one dialect. It holds no mutable
// state and is safe for concurrent use.
type SQLBuilder struct {
	dialect Dialect
}

// NewSQLBuilder creates a builder for d.
func NewSQLBuilder(d Dialect) *SQLBuilder {
	return &SQLBuilder{dialect: d}
}

// Dialect returns the builder's dialect.
func (b *SQLBuilder) Dialect() Dialect { return b.dialect }

// Build renders r. Hints on a dialect without hint support fail with
// UnsupportedHints.
func (b *SQLBuilder) Build(r *request.Request) (Statement, error) {
	if r == nil {
		return Statement{}, reqerr.InvalidArgument("cannot build a statement for a nil request")
	}
	if h := r.Hints(); h != "" && !b.dialect.SupportsHints {
		return Statement{}, reqerr.UnsupportedHints(b.dialect.Name, h)
	}

	var (
		q   sq.Sqlizer
		err error
	)
	switch shape := r.Spec().Shape; shape {
	case request.ShapeSelect:
		q, err = b.selectRows(r)
	case request.ShapeAverage, request.ShapeMin, request.ShapeMax, request.ShapeSum:
		q, err = b.aggregate(r, shape)
	case request.ShapeCount:
		q, err = b.count(r)
	case request.ShapeExists:
		q, err = b.exists(r)
	case request.ShapeDelete:
		q, err = b.delete(r)
	default:
		return Statement{}, reqerr.InvalidArgument("%s request: no rendering for shape %s", r.Kind(), shape)
	}
	if err != nil {
		return Statement{}, err
	}

	text, args, err := q.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("render %s request for %s: %w", r.Kind(), r.Name(), err)
	}
	return Statement{SQL: text, Args: args}, nil
}

func (b *SQLBuilder) statements() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(b.dialect.Placeholder)
}

// from returns the quoted target with hints appended.
func (b *SQLBuilder) from(r *request.Request) string {
	from := b.dialect.Quote(r.Name())
	if h := r.Hints(); h != "" {
		from += " " + h
	}
	return from
}

func (b *SQLBuilder) selectRows(r *request.Request) (sq.Sqlizer, error) {
	cols := []string{"*"}
	if fields := r.Fields(); len(fields) > 0 {
		cols = b.dialect.QuoteAll(field.Names(fields))
	}
	q := b.statements().Select(cols...).From(b.from(r))
	q, err := b.where(q, r)
	if err != nil {
		return nil, err
	}
	for _, of := range r.OrderBy() {
		q = q.OrderBy(b.dialect.Quote(of.Field().Name()) + " " + of.Order().String())
	}
	if n, ok := r.Limit(); ok {
		q = b.limit(q, n)
	}
	return q, nil
}

func (b *SQLBuilder) aggregate(r *request.Request, shape request.Shape) (sq.Sqlizer, error) {
	f, ok := r.Field()
	if !ok {
		return nil, reqerr.InvalidArgument("%s request needs exactly one field to aggregate", r.Kind())
	}
	agg := aggregates[shape]
	col := fmt.Sprintf("%s(%s) AS %s", agg.fn, b.dialect.Quote(f.Name()), b.dialect.Quote(agg.alias))
	return b.where(b.statements().Select(col).From(b.from(r)), r)
}

func (b *SQLBuilder) count(r *request.Request) (sq.Sqlizer, error) {
	col := "COUNT(*) AS " + b.dialect.Quote("CountValue")
	return b.where(b.statements().Select(col).From(b.from(r)), r)
}

func (b *SQLBuilder) exists(r *request.Request) (sq.Sqlizer, error) {
	col := "1 AS " + b.dialect.Quote("ExistsValue")
	q, err := b.where(b.statements().Select(col).From(b.from(r)), r)
	if err != nil {
		return nil, err
	}
	return b.limit(q, 1), nil
}

func (b *SQLBuilder) delete(r *request.Request) (sq.Sqlizer, error) {
	q := b.statements().Delete(b.from(r))
	g, ok := r.Where()
	if !ok {
		return q, nil
	}
	cond, err := b.node(g)
	if err != nil {
		return nil, err
	}
	return q.Where(cond), nil
}

func (b *SQLBuilder) limit(q sq.SelectBuilder, n int) sq.SelectBuilder {
	if b.dialect.TopLimit {
		return q.Options("TOP (" + strconv.Itoa(n) + ")")
	}
	return q.Limit(uint64(n))
}

func (b *SQLBuilder) where(q sq.SelectBuilder, r *request.Request) (sq.SelectBuilder, error) {
	g, ok := r.Where()
	if !ok {
		return q, nil
	}
	cond, err := b.node(g)
	if err != nil {
		return q, err
	}
	return q.Where(cond), nil
}

// node renders a predicate tree. Groups always render parenthesized.
func (b *SQLBuilder) node(n predicate.Node) (sq.Sqlizer, error) {
	switch x := n.(type) {
	case predicate.Predicate:
		return b.predicate(x), nil
	case predicate.Group:
		parts := make([]sq.Sqlizer, 0, x.Len())
		for _, child := range x.Children() {
			s, err := b.node(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		if x.Combinator() == predicate.CombineOr {
			return sq.Or(parts), nil
		}
		return sq.And(parts), nil
	default:
		return nil, reqerr.InvalidArgument("cannot render predicate node %T", n)
	}
}

func (b *SQLBuilder) predicate(p predicate.Predicate) sq.Sqlizer {
	col := b.dialect.Quote(p.FieldName())
	op := p.Operator()
	args := p.Args()
	switch op {
	case predicate.Between, predicate.NotBetween:
		return sq.Expr(col+" "+op.Symbol()+" ? AND ?", args...)
	case predicate.In, predicate.NotIn:
		return sq.Expr(col+" "+op.Symbol()+" ("+sq.Placeholders(len(args))+")", args...)
	case predicate.IsNull, predicate.IsNotNull:
		return sq.Expr(col + " " + op.Symbol())
	default:
		return sq.Expr(col+" "+op.Symbol()+" ?", args...)
	}
}
