package request

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqkey/internal/field"
	"github.com/roach88/reqkey/internal/mapping"
	"github.com/roach88/reqkey/internal/predicate"
	"github.com/roach88/reqkey/internal/reqerr"
)

type T struct {
	Id   int64
	Name string
	Age  int
}

type Customer struct {
	Id int64
}

func (Customer) TableName() string { return "crm.customers" }

// countingResolver counts Resolve calls.
type countingResolver struct {
	calls atomic.Int32
	inner mapping.Resolver
}

func (c *countingResolver) Resolve(t reflect.Type) (string, error) {
	c.calls.Add(1)
	return c.inner.Resolve(t)
}

type failingResolver struct{}

func (failingResolver) Resolve(reflect.Type) (string, error) {
	return "", errors.New("lookup table unavailable")
}

func ageOver18() predicate.Group {
	return predicate.Must(predicate.And(predicate.Must(predicate.New("Age", predicate.GreaterThan, 18))))
}

func TestTypeAndNameConstructionHashEqual(t *testing.T) {
	resolver := &countingResolver{inner: mapping.NewNameCache()}

	byType, err := NewOf[T](KindQuery, resolver,
		WithFields(field.MustNew("Id")),
		WithWhere(ageOver18()),
	)
	require.NoError(t, err)
	assert.Equal(t, int32(1), resolver.calls.Load(), "resolver called exactly once")

	byName, err := New(KindQuery, "T",
		WithFields(field.MustNew("Id")),
		WithWhere(ageOver18()),
	)
	require.NoError(t, err)

	assert.Equal(t, "T", byType.Name())
	assert.Equal(t, reflect.TypeFor[T](), byType.Type())
	assert.Nil(t, byName.Type())
	assert.Equal(t, byType.Hash(), byName.Hash())
	assert.True(t, byType.Equal(byName))
	assert.True(t, byName.Equal(byType))
	assert.True(t, StructuralComparer{}.Equal(byType, byName))
}

func TestNewForUsesTableName(t *testing.T) {
	r, err := NewFor(KindCountAll, mapping.NewNameCache(), reflect.TypeFor[*Customer]())
	require.NoError(t, err)
	assert.Equal(t, "crm.customers", r.Name())

	snake, err := NewOf[T](KindCountAll, mapping.NewNameCache(mapping.WithNaming(mapping.SnakeCase)))
	require.NoError(t, err)
	assert.Equal(t, "t", snake.Name())
}

func TestNewForErrors(t *testing.T) {
	_, err := NewFor(KindQuery, nil, nil)
	assert.True(t, reqerr.IsInvalidArgument(err))

	_, err = NewOf[int](KindQuery, mapping.NewNameCache())
	assert.True(t, reqerr.IsUnmappedType(err))

	_, err = NewOf[T](KindQuery, failingResolver{})
	assert.True(t, reqerr.IsUnmappedType(err))
	assert.Contains(t, err.Error(), "lookup table unavailable")
}

func TestNewRejectsBlankName(t *testing.T) {
	for _, name := range []string{"", "   "} {
		_, err := New(KindQuery, name)
		assert.True(t, reqerr.IsInvalidArgument(err), "name %q", name)
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(Kind("Upsert"), "T")
	assert.True(t, reqerr.IsInvalidArgument(err))
}

func TestComponentAcceptance(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		opts []Option
		ok   bool
	}{
		{"query with everything", KindQuery, []Option{
			WithFields(field.MustNew("Id")), WithWhere(ageOver18()),
			WithOrderBy(field.Asc("Id")), WithLimit(10), WithHints("WITH (NOLOCK)"),
		}, true},
		{"query all with where", KindQueryAll, []Option{WithWhere(ageOver18())}, false},
		{"query all with limit", KindQueryAll, []Option{WithLimit(5)}, false},
		{"average with field", KindAverage, []Option{WithField(field.MustNew("Age")), WithWhere(ageOver18())}, true},
		{"average without field", KindAverage, nil, false},
		{"average with field list", KindAverage, []Option{WithFields(field.MustNew("Age"))}, false},
		{"average with order", KindAverage, []Option{WithField(field.MustNew("Age")), WithOrderBy(field.Asc("Age"))}, false},
		{"max all with where", KindMaxAll, []Option{WithField(field.MustNew("Age")), WithWhere(ageOver18())}, false},
		{"max all with hints", KindMaxAll, []Option{WithField(field.MustNew("Age")), WithHints("NOLOCK")}, true},
		{"count all with field", KindCountAll, []Option{WithField(field.MustNew("Id"))}, false},
		{"delete with where", KindDelete, []Option{WithWhere(ageOver18())}, true},
		{"delete all with where", KindDeleteAll, []Option{WithWhere(ageOver18())}, false},
		{"exists with limit", KindExists, []Option{WithLimit(1)}, false},
		{"field and fields", KindQuery, []Option{WithFields(field.MustNew("Id")), WithField(field.MustNew("Age"))}, false},
		{"negative limit", KindQuery, []Option{WithLimit(-1)}, false},
		{"zero field", KindQuery, []Option{WithFields(field.Field{})}, false},
		{"bad field name", KindQuery, []Option{WithFieldNames("Id", " ")}, false},
		{"zero predicate", KindQuery, []Option{WithWhereNode(predicate.Predicate{})}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kind, "T", tt.opts...)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, reqerr.IsInvalidArgument(err), "got %v", err)
		})
	}
}

func TestEmptyComponentsAreAbsent(t *testing.T) {
	absent, err := New(KindQuery, "T")
	require.NoError(t, err)

	empty, err := New(KindQuery, "T",
		WithFields(),
		WithFieldNames(),
		WithWhere(predicate.Group{}),
		WithWhereNode(nil),
		WithOrderBy(),
		WithLimit(0),
		WithHints("   "),
	)
	require.NoError(t, err)

	assert.Equal(t, absent.Hash(), empty.Hash())
	assert.True(t, StructuralComparer{}.Equal(absent, empty))
	assert.Nil(t, empty.Fields())
	assert.Nil(t, empty.OrderBy())
	_, hasWhere := empty.Where()
	assert.False(t, hasWhere)
	_, hasLimit := empty.Limit()
	assert.False(t, hasLimit)
	assert.Empty(t, empty.Hints())

	// A kind that rejects a component still accepts its empty form.
	_, err = New(KindCountAll, "T", WithWhere(predicate.Group{}), WithFields())
	assert.NoError(t, err)
}

func TestHashIncorporatesEveryComponent(t *testing.T) {
	base := func(opts ...Option) *Request {
		r, err := New(KindQuery, "T", opts...)
		require.NoError(t, err)
		return r
	}
	plain := base()

	variants := map[string]*Request{
		"fields":  base(WithFields(field.MustNew("Id"))),
		"where":   base(WithWhere(ageOver18())),
		"orderBy": base(WithOrderBy(field.Asc("Id"))),
		"limit":   base(WithLimit(10)),
		"hints":   base(WithHints("NOLOCK")),
	}
	seen := map[uint64]string{plain.Hash(): "plain"}
	for name, r := range variants {
		assert.NotEqual(t, plain.Hash(), r.Hash(), name)
		prev, dup := seen[r.Hash()]
		assert.False(t, dup, "%s collides with %s", name, prev)
		seen[r.Hash()] = name
	}

	other, err := New(KindQuery, "U")
	require.NoError(t, err)
	assert.NotEqual(t, plain.Hash(), other.Hash(), "name matters")

	all, err := New(KindQueryAll, "T")
	require.NoError(t, err)
	assert.NotEqual(t, plain.Hash(), all.Hash(), "kind matters")
}

func TestHashIgnoresFilterOrder(t *testing.T) {
	p1 := predicate.Must(predicate.New("Age", predicate.GreaterThan, 18))
	p2 := predicate.Must(predicate.New("Name", predicate.Equal, "a"))

	a, err := New(KindCount, "T", WithWhere(predicate.Must(predicate.And(p1, p2))))
	require.NoError(t, err)
	b, err := New(KindCount, "T", WithWhere(predicate.Must(predicate.And(p2, p1))))
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, StructuralComparer{}.Equal(a, b))
}

func TestHashSeparatesTradedFilterParts(t *testing.T) {
	where := func(id, age predicate.Predicate) Option {
		return WithWhere(predicate.Must(predicate.And(id, age)))
	}
	a, err := New(KindQuery, "T", where(
		predicate.Must(predicate.New("Id", predicate.Equal, 1)),
		predicate.Must(predicate.New("Age", predicate.GreaterThan, 2)),
	))
	require.NoError(t, err)
	b, err := New(KindQuery, "T", where(
		predicate.Must(predicate.New("Id", predicate.GreaterThan, 2)),
		predicate.Must(predicate.New("Age", predicate.Equal, 1)),
	))
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(b))
}

func TestHashSeparatesRegroupedFilters(t *testing.T) {
	pa := predicate.Must(predicate.New("A", predicate.Equal, 1))
	pb := predicate.Must(predicate.New("B", predicate.Equal, 1))
	pc := predicate.Must(predicate.New("C", predicate.Equal, 1))

	x, err := New(KindCount, "T", WithWhere(predicate.Must(predicate.Or(pa, predicate.Must(predicate.And(pb, pc))))))
	require.NoError(t, err)
	y, err := New(KindCount, "T", WithWhere(predicate.Must(predicate.And(predicate.Must(predicate.Or(pa, pb)), pc))))
	require.NoError(t, err)

	assert.NotEqual(t, x.Hash(), y.Hash())
	assert.False(t, x.Equal(y))
}

func TestHashRespectsFieldOrder(t *testing.T) {
	a, err := New(KindQuery, "T", WithFieldNames("Id", "Name"))
	require.NoError(t, err)
	b, err := New(KindQuery, "T", WithFieldNames("Name", "Id"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestHintsAreTrimmed(t *testing.T) {
	a, err := New(KindQuery, "T", WithHints(" NOLOCK "))
	require.NoError(t, err)
	b, err := New(KindQuery, "T", WithHints("NOLOCK"))
	require.NoError(t, err)
	assert.Equal(t, "NOLOCK", a.Hints())
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestConcurrentHash(t *testing.T) {
	r, err := New(KindQuery, "T", WithFieldNames("Id", "Name"), WithWhere(ageOver18()), WithLimit(3))
	require.NoError(t, err)

	const workers = 32
	results := make([]uint64, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Hash()
		}()
	}
	wg.Wait()

	for _, h := range results {
		assert.Equal(t, results[0], h)
	}
	assert.Equal(t, r.computeHash(), results[0])
}

func TestAccessorsReturnCopies(t *testing.T) {
	fields := field.MustFromNames("Id", "Name")
	r, err := New(KindQuery, "T", WithFields(fields...), WithOrderBy(field.Asc("Id")))
	require.NoError(t, err)
	before := r.Hash()

	fields[0] = field.MustNew("Other")
	got := r.Fields()
	got[1] = field.MustNew("Other")
	r.OrderBy()[0] = field.Desc("Other")

	assert.Equal(t, []string{"Id", "Name"}, field.Names(r.Fields()))
	assert.True(t, field.OrderEquals([]field.OrderField{field.Asc("Id")}, r.OrderBy()))
	assert.Equal(t, before, r.computeHash())
}

func TestAggregateField(t *testing.T) {
	r, err := New(KindAverage, "T", WithField(field.MustNew("Age")))
	require.NoError(t, err)

	f, ok := r.Field()
	require.True(t, ok)
	assert.Equal(t, "Age", f.Name())

	q, err := New(KindQuery, "T", WithFieldNames("Age"))
	require.NoError(t, err)
	_, ok = q.Field()
	assert.False(t, ok, "projection lists are not aggregate fields")
}

func TestWithFieldsReturnsNewRequest(t *testing.T) {
	r, err := New(KindQuery, "T", WithFieldNames("Id"), WithLimit(5))
	require.NoError(t, err)
	before := r.Hash()

	r2, err := r.WithFields(field.MustFromNames("Id", "Name")...)
	require.NoError(t, err)

	assert.Equal(t, before, r.Hash(), "original unchanged")
	assert.Equal(t, []string{"Id"}, field.Names(r.Fields()))
	assert.Equal(t, []string{"Id", "Name"}, field.Names(r2.Fields()))
	assert.NotEqual(t, before, r2.Hash())

	limit, ok := r2.Limit()
	assert.True(t, ok)
	assert.Equal(t, 5, limit)

	direct, err := New(KindQuery, "T", WithFieldNames("Id", "Name"), WithLimit(5))
	require.NoError(t, err)
	assert.Equal(t, direct.Hash(), r2.Hash())

	cleared, err := r.WithFields()
	require.NoError(t, err)
	assert.Nil(t, cleared.Fields())
}

func TestWithFieldsOnAggregate(t *testing.T) {
	r, err := New(KindMax, "T", WithField(field.MustNew("Age")))
	require.NoError(t, err)

	r2, err := r.WithFields(field.MustNew("Id"))
	require.NoError(t, err)
	f, ok := r2.Field()
	require.True(t, ok)
	assert.Equal(t, "Id", f.Name())

	_, err = r.WithFields(field.MustFromNames("Id", "Age")...)
	assert.True(t, reqerr.IsInvalidArgument(err))

	_, err = r.WithFields()
	assert.True(t, reqerr.IsInvalidArgument(err), "aggregate requires a field")
}

type stubBuilder struct {
	calls int
}

func (b *stubBuilder) Build(r *Request) (Statement, error) {
	b.calls++
	return Statement{SQL: "SELECT 1 FROM " + r.Name()}, nil
}

func TestStatementUsesBorrowedBuilder(t *testing.T) {
	b := &stubBuilder{}
	withBuilder, err := New(KindQuery, "T", WithBuilder(b))
	require.NoError(t, err)
	without, err := New(KindQuery, "T")
	require.NoError(t, err)

	assert.Equal(t, without.Hash(), withBuilder.Hash(), "builder is not identity")
	assert.Same(t, b, withBuilder.Builder())

	stmt, err := withBuilder.Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM T", stmt.SQL)
	assert.Equal(t, 1, b.calls)

	_, err = without.Statement()
	assert.True(t, reqerr.IsInvalidArgument(err))
}

func TestWhereNode(t *testing.T) {
	p := predicate.Must(predicate.New("Age", predicate.GreaterThan, 18))

	a, err := New(KindCount, "T", WithWhereNode(p))
	require.NoError(t, err)
	b, err := New(KindCount, "T", WithWhere(ageOver18()))
	require.NoError(t, err)
	assert.Equal(t, a.Hash(), b.Hash())

	g, ok := a.Where()
	require.True(t, ok)
	assert.Equal(t, predicate.CombineAnd, g.Combinator())
}

func TestRequestString(t *testing.T) {
	r, err := New(KindQuery, "T",
		WithFieldNames("Id", "Name"),
		WithWhere(ageOver18()),
		WithOrderBy(field.Desc("Id")),
		WithLimit(5),
		WithHints("NOLOCK"),
	)
	require.NoError(t, err)
	assert.Equal(t, `Query(T) fields=[Id, Name] where=(Age > 18) orderBy=[Id DESC] limit=5 hints="NOLOCK"`, r.String())
}
