package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	testCases := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"int", Int(-42), "-42"},
		{"float", Float(0.1), "0.1"},
		{"negative zero", Float(math.Copysign(0, -1)), "0"},
		{"large float", Float(1e21), "1e+21"},
		{"bool", Bool(false), "false"},
		{"string", String("a<b>&c"), `"a<b>&c"`},
		{"control char", String("a\nb"), `"a\nb"`},
		{"line separator", String("a\u2028b"), "\"a\u2028b\""},
		{"list", List{Int(1), String("x"), Null{}}, `[1,"x",null]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MarshalCanonical(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// e + combining acute (NFD) must encode the same as the precomposed form (NFC).
	nfd := String("e\u0301")
	nfc := String("\u00e9")

	a, err := MarshalCanonical(nfd)
	require.NoError(t, err)
	b, err := MarshalCanonical(nfc)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestUnescapeLineSeparatorsKeepsEscapedBackslash(t *testing.T) {
	in := []byte(`"\\u2028"`)
	assert.Equal(t, string(in), string(unescapeLineSeparators(in)))

	in = []byte(`"\u2028"`)
	assert.Equal(t, "\"\u2028\"", string(unescapeLineSeparators(in)))
}

func TestText(t *testing.T) {
	assert.Equal(t, `[1,2]`, Text(List{Int(1), Int(2)}))
	assert.Equal(t, `"a"`, Text(String("a")))
}
