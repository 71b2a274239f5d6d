package expr

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqkey/internal/reqerr"
)

type Person struct {
	Id   int64
	Name string `db:"full_name"`
	Age  int
}

var (
	intType    = reflect.TypeFor[int]()
	int64Type  = reflect.TypeFor[int64]()
	stringType = reflect.TypeFor[string]()
)

func TestParamMember(t *testing.T) {
	p := ParamFor[Person](nil)

	m, err := p.Member("Age")
	require.NoError(t, err)
	assert.Equal(t, Member{Name: "Age", Type: intType}, m)

	m, err = p.Member("Name")
	require.NoError(t, err)
	assert.Equal(t, Member{Name: "full_name", Type: stringType}, m, "mapped name wins")

	_, err = p.Member("Missing")
	assert.True(t, reqerr.IsInvalidExpression(err))

	var unbound *Param
	m, err = unbound.Member("Anything")
	require.NoError(t, err)
	assert.Equal(t, Member{Name: "Anything"}, m)
}

func TestBuilders(t *testing.T) {
	p := ParamFor[Person](nil)

	gt := Gt(p.M("Age"), 18)
	assert.Equal(t, Comparison{Op: OpGt, Left: Member{Name: "Age", Type: intType}, Right: Const{Value: 18}}, gt)
	assert.Equal(t, "e.Age > 18", gt.String())

	tree := And(gt, Or(Eq(p.M("Id"), 1), StartsWith(p.M("Name"), "A")))
	assert.Equal(t, `e.Age > 18 && (e.Id == 1 || e.full_name.StartsWith("A"))`, tree.String())

	assert.Equal(t, "!(e.Age > 18)", Negate(gt).String())
	assert.Equal(t, "e.Age as Years", As(p.M("Age"), "Years").String())
	assert.Equal(t, "int64(e.Age)", Convert(p.M("Age"), int64Type).String())
}

func TestUnwrap(t *testing.T) {
	m := Member{Name: "Age"}
	assert.Equal(t, Node(m), Unwrap(Convert(Convert(m, intType), int64Type)))
	assert.Equal(t, Node(m), Unwrap(m))
}

func TestCompareOpFlip(t *testing.T) {
	assert.Equal(t, OpGt, OpLt.Flip())
	assert.Equal(t, OpLe, OpGe.Flip())
	assert.Equal(t, OpEq, OpEq.Flip())
	assert.Equal(t, OpNe, OpNe.Flip())
}

func TestParse(t *testing.T) {
	p := ParamFor[Person](nil)
	age := Member{Name: "Age", Type: intType}
	id := Member{Name: "Id", Type: int64Type}
	name := Member{Name: "full_name", Type: stringType}

	testCases := []struct {
		name string
		src  string
		want Node
	}{
		{"member", "e.Age", age},
		{"bare member", "Age", age},
		{"go name resolves to mapped", "e.Name", name},
		{"comparison", "e.Age > 18", Comparison{Op: OpGt, Left: age, Right: Const{Value: int64(18)}}},
		{"const on left", "18 <= e.Age", Comparison{Op: OpLe, Left: Const{Value: int64(18)}, Right: age}},
		{"string", `e.Name == "a"`, Comparison{Op: OpEq, Left: name, Right: Const{Value: "a"}}},
		{"null", "e.Name != null", Comparison{Op: OpNe, Left: name, Right: Const{Value: nil}}},
		{"negative", "e.Age > -1", Comparison{Op: OpGt, Left: age, Right: Const{Value: int64(-1)}}},
		{"float", "e.Age < 2.5", Comparison{Op: OpLt, Left: age, Right: Const{Value: 2.5}}},
		{"bool", "e.Age == true", Comparison{Op: OpEq, Left: age, Right: Const{Value: true}}},
		{"not", "!(e.Age > 18)", Not{X: Comparison{Op: OpGt, Left: age, Right: Const{Value: int64(18)}}}},
		{"conversion", "int(e.Age)", Conversion{X: age, Type: int64Type}},
		{
			"and chain flattens",
			"e.Age > 1 && e.Id == 2 && e.Name == \"x\"",
			Logical{Op: OpAnd, Children: []Node{
				Comparison{Op: OpGt, Left: age, Right: Const{Value: int64(1)}},
				Comparison{Op: OpEq, Left: id, Right: Const{Value: int64(2)}},
				Comparison{Op: OpEq, Left: name, Right: Const{Value: "x"}},
			}},
		},
		{
			"mixed logic keeps nesting",
			"e.Age > 1 || (e.Id == 2 && e.Id == 3)",
			Logical{Op: OpOr, Children: []Node{
				Comparison{Op: OpGt, Left: age, Right: Const{Value: int64(1)}},
				Logical{Op: OpAnd, Children: []Node{
					Comparison{Op: OpEq, Left: id, Right: Const{Value: int64(2)}},
					Comparison{Op: OpEq, Left: id, Right: Const{Value: int64(3)}},
				}},
			}},
		},
		{
			"list contains",
			"list.Contains([1, 2], e.Id)",
			Call{Method: MethodContains, Receiver: Const{Value: []any{int64(1), int64(2)}}, Args: []Node{id}},
		},
		{
			"strings prefix",
			`strings.HasPrefix(e.Name, "Jo")`,
			Call{Method: MethodStartsWith, Receiver: name, Args: []Node{Const{Value: "Jo"}}},
		},
		{
			"method form",
			`e.Name.EndsWith("son")`,
			Call{Method: MethodEndsWith, Receiver: name, Args: []Node{Const{Value: "son"}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.src, p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseUntyped(t *testing.T) {
	got, err := Parse("e.Whatever == 1", nil)
	require.NoError(t, err)
	assert.Equal(t, Comparison{Op: OpEq, Left: Member{Name: "Whatever"}, Right: Const{Value: int64(1)}}, got)
}

func TestParseErrors(t *testing.T) {
	p := ParamFor[Person](nil)

	testCases := []struct {
		name string
		src  string
		code reqerr.Code
	}{
		{"empty", "   ", reqerr.CodeInvalidExpression},
		{"syntax", "e.Age >", reqerr.CodeInvalidExpression},
		{"unknown member", "e.Height > 1", reqerr.CodeInvalidExpression},
		{"nested member", "e.Address.City == \"x\"", reqerr.CodeInvalidExpression},
		{"regex", `e.Name =~ "^a"`, reqerr.CodeUnsupportedExpression},
		{"arithmetic", "e.Age + 1 > 2", reqerr.CodeUnsupportedExpression},
		{"unknown function", "len(e.Name) > 2", reqerr.CodeUnsupportedExpression},
		{"unknown method", "e.Name.ToUpper()", reqerr.CodeUnsupportedExpression},
		{"non literal list", "list.Contains([e.Id], 1)", reqerr.CodeUnsupportedExpression},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src, p)
			require.Error(t, err)
			assert.Equal(t, tc.code, reqerr.CodeOf(err), err.Error())
		})
	}
}

func TestParseErrorCarriesExpressionText(t *testing.T) {
	_, err := Parse(`e.Name =~ "^a"`, nil)
	require.Error(t, err)

	var re *reqerr.Error
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Expr, "=~")
}
