package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarshalCanonical_KeyOrder sorts object keys.
func TestMarshalCanonical_KeyOrder(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(data))
}

// TestMarshalCanonical_Floats collapses integral floats and renders
// fractions in shortest form.
func TestMarshalCanonical_Floats(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"a": 2.0, "b": 0.1, "c": int64(7)})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":0.1,"c":7}`, string(data))
}

// TestMarshalCanonical_NonFinite rejects NaN and Inf.
func TestMarshalCanonical_NonFinite(t *testing.T) {
	for _, f := range []float64{nan(), inf()} {
		_, err := MarshalCanonical(map[string]any{"x": f})
		require.Error(t, err)
	}
}

// TestMarshalCanonical_NoHTMLEscaping keeps < > & literal.
func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(data))
}

// TestMarshalCanonical_NullForbidden rejects nil values.
func TestMarshalCanonical_NullForbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)
}

// TestMarshalCanonical_StringSlice handles []string directly.
func TestMarshalCanonical_StringSlice(t *testing.T) {
	data, err := MarshalCanonical([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, `["b","a"]`, string(data))
}

// TestMarshalCanonical_Deterministic: identical input, identical bytes.
func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := map[string]any{
		"name":  "m",
		"rules": []any{map[string]any{"rate": 1.5, "name": "r"}},
	}
	a, err := MarshalCanonical(obj)
	require.NoError(t, err)
	b, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func inf() float64 {
	var zero float64
	return 1 / zero
}
