package schema_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

func TestCoerce_Scalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typ      schema.Type
		raw      any
		expected any
		mismatch bool
	}{
		{name: "string passes through", typ: schema.String(), raw: "  padded ", expected: "  padded "},
		{name: "int widens to int64", typ: schema.Int(), raw: 250, expected: int64(250)},
		{name: "uint16 to int64", typ: schema.Int(), raw: uint16(7), expected: int64(7)},
		{name: "huge uint64 is not truncated", typ: schema.Int(), raw: uint64(math.MaxUint64), mismatch: true},
		{name: "numeric string parses to int", typ: schema.Int(), raw: "42", expected: int64(42)},
		{name: "partial int string is rejected", typ: schema.Int(), raw: "42abc", mismatch: true},
		{name: "whitespace is not trimmed", typ: schema.Int(), raw: " 42", mismatch: true},
		{name: "float never becomes int", typ: schema.Int(), raw: 3.0, mismatch: true},
		{name: "decimal string is not an int", typ: schema.Int(), raw: "3.5", mismatch: true},
		{name: "json number int", typ: schema.Int(), raw: json.Number("12"), expected: int64(12)},
		{name: "json number fraction is not an int", typ: schema.Int(), raw: json.Number("1.5"), mismatch: true},
		{name: "int widens to float", typ: schema.Float(), raw: 100, expected: 100.0},
		{name: "int at 2^53 widens to float", typ: schema.Float(), raw: int64(1 << 53), expected: float64(1 << 53)},
		{name: "int beyond 2^53 does not round", typ: schema.Float(), raw: int64(1<<53 + 1), mismatch: true},
		{name: "float32 widens", typ: schema.Float(), raw: float32(0.5), expected: 0.5},
		{name: "numeric string parses to float", typ: schema.Float(), raw: "499.99", expected: 499.99},
		{name: "partial float string is rejected", typ: schema.Float(), raw: "499.99 USD", mismatch: true},
		{name: "bool stays bool", typ: schema.Bool(), raw: true, expected: true},
		{name: "string is not a bool", typ: schema.Bool(), raw: "true", mismatch: true},
		{name: "number is not a string", typ: schema.String(), raw: 5, mismatch: true},
		{name: "nil for non-nullable", typ: schema.String(), raw: nil, mismatch: true},
		{name: "nil for nullable", typ: schema.Nullable(schema.String()), raw: nil, expected: nil},
		{name: "any accepts anything", typ: schema.Any(), raw: struct{}{}, expected: struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := schema.Coerce(tt.typ, tt.raw)
			if tt.mismatch {
				errs := schema.ExtractValidationErrors(err)
				require.Len(t, errs, 1)
				assert.Equal(t, schema.TypeMismatch, errs[0].Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestCoerce_Union(t *testing.T) {
	t.Parallel()

	intOrBool := schema.Union(schema.KindInt, schema.KindBool)

	v, err := schema.Coerce(intOrBool, true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = schema.Coerce(intOrBool, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	t.Run("exact match wins over conversion", func(t *testing.T) {
		t.Parallel()
		intOrString := schema.Union(schema.KindInt, schema.KindString)
		v, err := schema.Coerce(intOrString, "5")
		require.NoError(t, err)
		assert.Equal(t, "5", v)
	})

	t.Run("falls back to lossless conversion in declared order", func(t *testing.T) {
		t.Parallel()
		v, err := schema.Coerce(intOrBool, "7")
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("rejects values matching no variant", func(t *testing.T) {
		t.Parallel()
		_, err := schema.Coerce(intOrBool, 2.5)
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "expected int|bool, got float", errs[0].Message)
	})

	assert.Panics(t, func() { schema.Union(schema.KindList) })
}

func TestCoerce_Containers(t *testing.T) {
	t.Parallel()

	t.Run("typed slices become []any", func(t *testing.T) {
		t.Parallel()
		v, err := schema.Coerce(schema.ListOf(schema.String()), []string{"milk", "bread"})
		require.NoError(t, err)
		assert.Equal(t, []any{"milk", "bread"}, v)
	})

	t.Run("element failures carry index paths", func(t *testing.T) {
		t.Parallel()
		_, err := schema.Coerce(schema.ListOf(schema.Int()), []any{1, "x", 3, 4.5})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, schema.Path{"1"}, errs[0].Path)
		assert.Equal(t, schema.Path{"3"}, errs[1].Path)
	})

	t.Run("map values coerce with key paths in sorted order", func(t *testing.T) {
		t.Parallel()
		config := schema.MapOf(schema.Union(schema.KindInt, schema.KindBool))
		v, err := schema.Coerce(config, map[string]any{"retries": 3, "verbose": true})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"retries": int64(3), "verbose": true}, v)

		_, err = schema.Coerce(config, map[string]any{"z": "no", "a": 1.5})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, schema.Path{"a"}, errs[0].Path)
		assert.Equal(t, schema.Path{"z"}, errs[1].Path)
	})

	t.Run("string is not a list", func(t *testing.T) {
		t.Parallel()
		_, err := schema.Coerce(schema.ListOf(schema.String()), "abc")
		assert.True(t, schema.IsValidationError(err))
	})

	t.Run("non-string keyed map is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := schema.Coerce(schema.MapOf(schema.Int()), map[int]int{1: 1})
		assert.True(t, schema.IsValidationError(err))
	})
}

func TestCoerce_UnboundRef(t *testing.T) {
	t.Parallel()

	_, err := schema.Coerce(schema.Ref("Address"), map[string]any{})
	assert.ErrorIs(t, err, schema.ErrUnresolvedRef)
}
