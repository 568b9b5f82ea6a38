package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []schema.Option
		want error
	}{
		{
			name: "duplicate field",
			opts: []schema.Option{
				schema.Field("a", schema.String()),
				schema.Field("a", schema.Int()),
			},
			want: schema.ErrDuplicateField,
		},
		{
			name: "length constraint on a number",
			opts: []schema.Option{schema.Field("n", schema.Int(), schema.MinLen(1))},
			want: schema.ErrInvalidConstraint,
		},
		{
			name: "range constraint on a string",
			opts: []schema.Option{schema.Field("s", schema.String(), schema.Positive())},
			want: schema.ErrInvalidConstraint,
		},
		{
			name: "pattern on a list",
			opts: []schema.Option{schema.Field("l", schema.ListOf(schema.String()), schema.Pattern(`x`))},
			want: schema.ErrInvalidConstraint,
		},
		{
			name: "default of the wrong type",
			opts: []schema.Option{schema.Field("n", schema.Int(), schema.Default("ten"))},
			want: schema.ErrInvalidDefault,
		},
		{
			name: "shared options for an undeclared field",
			opts: []schema.Option{
				schema.Field("a", schema.String()),
				schema.ForFields([]string{"a", "b"}, schema.MinLen(1)),
			},
			want: schema.ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := schema.New("Bad", tt.opts...)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := schema.New(" ")
		assert.ErrorIs(t, err, schema.ErrInvalidSchema)
	})

	t.Run("every problem is reported", func(t *testing.T) {
		t.Parallel()
		_, err := schema.New("Bad",
			schema.Field("n", schema.Int(), schema.MinLen(1)),
			schema.Field("s", schema.String(), schema.Default(1)),
		)
		assert.ErrorIs(t, err, schema.ErrInvalidConstraint)
		assert.ErrorIs(t, err, schema.ErrInvalidDefault)
	})

	assert.Panics(t, func() { schema.MustNew("") })
	assert.Panics(t, func() { schema.Default([]any{}) })
}

func TestSchema_Fields(t *testing.T) {
	t.Parallel()

	fields := book.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "title", fields[0].Name())
	assert.True(t, fields[0].Required())

	f, ok := book.Field("price")
	require.True(t, ok)
	assert.Equal(t, "float", f.Type().String())
	assert.Len(t, f.Constraints(), 2)

	_, ok = book.Field("isbn")
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	product := schema.MustNew("Product",
		schema.Summary("Catalog entry"),
		schema.Field("name", schema.String(), schema.MinLen(1),
			schema.Describe("Display name"),
			schema.Examples("Laptop"),
		),
		schema.Field("tags", schema.ListOf(schema.String()), schema.DefaultFunc(func() any { return []any{} })),
		schema.Field("email", schema.String(), schema.Optional(), schema.Default("user@example.com")),
		schema.Field("owner", schema.Object(address), schema.Optional()),
	)

	want := schema.Description{
		Name:    "Product",
		Summary: "Catalog entry",
		Fields: []schema.FieldDescription{
			{
				Name:        "name",
				Type:        "string",
				Required:    true,
				Constraints: []schema.ConstraintDescription{{Kind: "min_length", Params: map[string]any{"min": 1}}},
				Description: "Display name",
				Examples:    []any{"Laptop"},
			},
			{Name: "tags", Type: "list<string>", Factory: true},
			{Name: "email", Type: "string?", Default: "user@example.com"},
			{Name: "owner", Type: "Address?"},
		},
	}
	got := product.Describe()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("description mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"default_factory":true`)
}
