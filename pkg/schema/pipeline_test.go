package schema_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

var book = schema.MustNew("Book",
	schema.Field("title", schema.String(), schema.MinLen(3)),
	schema.Field("pages", schema.Int(), schema.Gt(0)),
	schema.Field("price", schema.Float(), schema.Ge(10), schema.Le(1000)),
)

func TestValidate_Book(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid input", func(t *testing.T) {
		t.Parallel()
		m, err := book.Validate(map[string]any{"title": "Beyond Good and Evil", "pages": 250, "price": 100})
		require.NoError(t, err)
		assert.Equal(t, "Beyond Good and Evil", m.String("title"))
		assert.Equal(t, int64(250), m.Int("pages"))
		assert.Equal(t, 100.0, m.Float("price"))
	})

	t.Run("reports the single violated constraint", func(t *testing.T) {
		t.Parallel()
		m, err := book.Validate(map[string]any{"title": "ANY BOOK", "pages": 23, "price": 2})
		assert.Nil(t, m)

		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.Path{"price"}, errs[0].Path)
		assert.Equal(t, schema.ConstraintViolation, errs[0].Kind)
		assert.Equal(t, "range", errs[0].Constraint)
		assert.Equal(t, "validation.ge", errs[0].TranslationKey)
	})

	t.Run("does not short-circuit across fields", func(t *testing.T) {
		t.Parallel()
		_, err := book.Validate(map[string]any{"title": "AB", "pages": -5, "price": 50})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, []string{"title", "pages"}, errs.Fields())
	})

	t.Run("missing and mistyped fields are reported together", func(t *testing.T) {
		t.Parallel()
		_, err := book.Validate(map[string]any{"pages": "many"})
		want := []schema.Record{
			{Path: []string{"title"}, Kind: "missing_required", Message: "field is required"},
			{Path: []string{"pages"}, Kind: "type_mismatch", Message: "expected int, got string"},
			{Path: []string{"price"}, Kind: "missing_required", Message: "field is required"},
		}
		if diff := cmp.Diff(want, schema.ExtractValidationErrors(err).Records()); diff != "" {
			t.Fatalf("report mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("numeric strings are coerced", func(t *testing.T) {
		t.Parallel()
		m, err := book.Validate(map[string]any{"title": "Dune", "pages": "412", "price": "19.99"})
		require.NoError(t, err)
		assert.Equal(t, int64(412), m.Int("pages"))
		assert.Equal(t, 19.99, m.Float("price"))
	})
}

func TestValidate_EveryConstraintOnAField(t *testing.T) {
	t.Parallel()

	username := schema.MustNew("User",
		schema.Field("username", schema.String(),
			schema.MinLen(4),
			schema.Pattern(`[a-z]+`),
			schema.MaxLen(20),
		),
	)

	_, err := username.Validate(map[string]any{"username": "AB1"})
	errs := schema.ExtractValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "min_length", errs[0].Constraint)
	assert.Equal(t, "pattern", errs[1].Constraint)
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	profile := schema.MustNew("UserProfile",
		schema.Field("username", schema.String(), schema.MinLen(4), schema.MaxLen(20)),
		schema.Field("email", schema.String()),
		schema.Field("bio", schema.String(), schema.Optional(), schema.Default(""), schema.MaxLen(150)),
		schema.Field("age", schema.Int(), schema.Default(18), schema.Ge(13)),
	)

	m, err := profile.Validate(map[string]any{"username": "harsh", "email": "code@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "", m.String("bio"))
	assert.Equal(t, int64(18), m.Int("age"))

	t.Run("explicit nil on optional field", func(t *testing.T) {
		t.Parallel()
		m, err := profile.Validate(map[string]any{"username": "harsh", "email": "e", "bio": nil})
		require.NoError(t, err)
		v, ok := m.Get("bio")
		assert.True(t, ok)
		assert.Nil(t, v)
		assert.False(t, m.Has("bio"))
	})

	t.Run("defaults are not validated unless requested", func(t *testing.T) {
		t.Parallel()
		s := schema.MustNew("S",
			schema.Field("a", schema.Int(), schema.Default(1), schema.Ge(5)),
			schema.Field("b", schema.Int(), schema.Default(1), schema.Ge(5), schema.ValidateDefault()),
		)
		_, err := s.Validate(nil)
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "b", errs[0].Field())
	})
}

func TestValidate_DefaultFactoryIsolation(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		produced []map[string]any
	)
	cart := schema.MustNew("Cart",
		schema.Field("items", schema.ListOf(schema.String()), schema.DefaultFunc(func() any { return []any{} })),
		schema.Field("meta", schema.MapOf(schema.Any()), schema.DefaultFunc(func() any {
			m := map[string]any{}
			mu.Lock()
			produced = append(produced, m)
			mu.Unlock()
			return m
		})),
		schema.Field("total", schema.Float(), schema.Default(0.0), schema.Ge(0)),
	)

	first, err := cart.Validate(map[string]any{})
	require.NoError(t, err)
	second, err := cart.Validate(map[string]any{})
	require.NoError(t, err)

	require.Len(t, produced, 2)
	produced[0]["touched"] = true
	assert.Empty(t, produced[1])

	items := first.List("items")
	items = append(items, "eraser")
	assert.Len(t, items, 1)
	assert.Empty(t, first.List("items"))
	assert.Empty(t, second.List("items"))
	assert.Equal(t, 0.0, second.Float("total"))
}

var address = schema.MustNew("Address",
	schema.Field("street", schema.String()),
	schema.Field("city", schema.String()),
	schema.Field("zip", schema.String(), schema.Pattern(`\d{6}`)),
)

func TestValidate_Nested(t *testing.T) {
	t.Parallel()

	user := schema.MustNew("User",
		schema.Field("name", schema.String()),
		schema.Field("address", schema.Object(address)),
	)

	t.Run("accepts nested record", func(t *testing.T) {
		t.Parallel()
		m, err := user.Validate(map[string]any{
			"name":    "Harsh Patel",
			"address": map[string]any{"street": "MG Road", "city": "Pune", "zip": "411001"},
		})
		require.NoError(t, err)
		require.NotNil(t, m.Model("address"))
		assert.Equal(t, "Pune", m.Model("address").String("city"))
	})

	t.Run("composes nested error paths", func(t *testing.T) {
		t.Parallel()
		_, err := user.Validate(map[string]any{
			"name":    "Harsh",
			"address": map[string]any{"street": "MG Road", "zip": "41100"},
		})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, schema.Path{"address", "city"}, errs[0].Path)
		assert.Equal(t, schema.Path{"address", "zip"}, errs[1].Path)
		assert.True(t, errs.Has("address.zip"))
		assert.Equal(t, "address.zip", errs[1].TranslationValues["field"])
	})

	t.Run("accepts an already validated model", func(t *testing.T) {
		t.Parallel()
		addr, err := address.Validate(map[string]any{"street": "MG Road", "city": "Pune", "zip": "411001"})
		require.NoError(t, err)
		m, err := user.Validate(map[string]any{"name": "Raj", "address": addr})
		require.NoError(t, err)
		assert.Same(t, addr, m.Model("address"))
	})

	t.Run("optional nested record", func(t *testing.T) {
		t.Parallel()
		profile := schema.MustNew("UserProfile",
			schema.Field("name", schema.String()),
			schema.Field("address", schema.Object(address), schema.Optional()),
		)
		m, err := profile.Validate(map[string]any{"name": "Raj"})
		require.NoError(t, err)
		assert.Nil(t, m.Model("address"))

		_, err = profile.Validate(map[string]any{"name": "Raj", "address": map[string]any{"city": "Pune"}})
		errs := schema.ExtractValidationErrors(err)
		assert.Equal(t, []string{"address.street", "address.zip"}, errs.Fields())
	})

	t.Run("list of nested records carries indices", func(t *testing.T) {
		t.Parallel()
		item := schema.MustNew("Item",
			schema.Field("name", schema.String()),
			schema.Field("price", schema.Int(), schema.Gt(0)),
		)
		order := schema.MustNew("Order",
			schema.Field("items", schema.ListOf(schema.Object(item)), schema.MinLen(1)),
		)
		_, err := order.Validate(map[string]any{"items": []any{
			map[string]any{"name": "Book", "price": 200},
			map[string]any{"name": "Pen", "price": 0},
		}})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.Path{"items", "1", "price"}, errs[0].Path)
	})

	t.Run("non-map nested value is a type mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := user.Validate(map[string]any{"name": "Raj", "address": "Pune"})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.TypeMismatch, errs[0].Kind)
		assert.Equal(t, "expected Address, got string", errs[0].Message)
	})
}

type orderItem struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

func TestValidate_AfterHooks(t *testing.T) {
	t.Parallel()

	item := schema.MustNew("Item",
		schema.Field("name", schema.String()),
		schema.Field("price", schema.Int(), schema.Gt(0)),
	)
	order := schema.MustNew("Order",
		schema.Field("order_id", schema.Int()),
		schema.Field("items", schema.ListOf(schema.Object(item))),
		schema.Field("total", schema.Float()),
		schema.After(func(m *schema.Model) error {
			var sum int64
			for _, it := range m.Models("items") {
				sum += it.Int("price")
			}
			if m.Float("total") < float64(sum) {
				return fmt.Errorf("Total %v is less than the sum of items prices %d", m.Float("total"), sum)
			}
			return nil
		}),
	)

	t.Run("rejects whole-model invariant without a path", func(t *testing.T) {
		t.Parallel()
		m, err := order.Validate(map[string]any{
			"order_id": 102,
			"items": []any{
				map[string]any{"name": "Book", "price": 200},
				map[string]any{"name": "Pen", "price": 50},
			},
			"total": 100,
		})
		assert.Nil(t, m)
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.HookRejected, errs[0].Kind)
		assert.Empty(t, errs[0].Path)
		assert.Equal(t, "Total 100 is less than the sum of items prices 250", errs[0].Message)
	})

	t.Run("field errors suppress after-hooks", func(t *testing.T) {
		t.Parallel()
		_, err := order.Validate(map[string]any{
			"order_id": "not-a-number",
			"items":    []any{map[string]any{"name": "Book", "price": 200}},
			"total":    100,
		})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.Path{"order_id"}, errs[0].Path)
		assert.Empty(t, errs.ByKind(schema.HookRejected))
	})

	t.Run("accepted model decodes into a struct", func(t *testing.T) {
		t.Parallel()
		m, err := order.Validate(map[string]any{
			"order_id": 7,
			"items":    []any{map[string]any{"name": "Book", "price": 200}},
			"total":    300,
		})
		require.NoError(t, err)

		var dst struct {
			OrderID int         `json:"order_id"`
			Items   []orderItem `json:"items"`
			Total   float64     `json:"total"`
		}
		require.NoError(t, m.Decode(&dst))
		assert.Equal(t, 7, dst.OrderID)
		assert.Equal(t, []orderItem{{Name: "Book", Price: 200}}, dst.Items)
	})
}

func TestValidate_AfterHookDerivedField(t *testing.T) {
	t.Parallel()

	shopping := schema.MustNew("ShoppingList",
		schema.Field("items", schema.ListOf(schema.String()), schema.MinLen(2)),
		schema.Field("total_items", schema.Int(), schema.Optional()),
		schema.After(func(m *schema.Model) error {
			return m.Set("total_items", len(m.List("items")))
		}),
	)

	m, err := shopping.Validate(map[string]any{"items": []string{"milk", "bread", "butter"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Int("total_items"))

	assert.ErrorIs(t, m.Set("total_items", 1), schema.ErrModelFrozen)

	t.Run("undeclared derived fields are rejected", func(t *testing.T) {
		t.Parallel()
		s := schema.MustNew("S",
			schema.Field("items", schema.ListOf(schema.String())),
			schema.After(func(m *schema.Model) error {
				return m.Set("count", 1)
			}),
		)
		_, err := s.Validate(map[string]any{"items": []any{}})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.HookRejected, errs[0].Kind)
		assert.Contains(t, errs[0].Message, "unknown field")
	})
}

func TestValidate_BeforeHooks(t *testing.T) {
	t.Parallel()

	product := schema.MustNew("Product",
		schema.Field("name", schema.String(), schema.MinLen(1)),
		schema.Field("price", schema.Float()),
		schema.Before(func(raw map[string]any) (map[string]any, error) {
			if name, ok := raw["name"].(string); ok {
				raw["name"] = strings.TrimSpace(name)
			}
			return raw, nil
		}),
	)

	input := map[string]any{"name": "  Laptop  ", "price": "499.99"}
	m, err := product.Validate(input)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", m.String("name"))
	assert.Equal(t, 499.99, m.Float("price"))
	assert.Equal(t, "  Laptop  ", input["name"], "caller input must not be modified")

	t.Run("without a hook whitespace is kept", func(t *testing.T) {
		t.Parallel()
		plain := schema.MustNew("Product", schema.Field("name", schema.String()))
		m, err := plain.Validate(map[string]any{"name": "  Laptop  "})
		require.NoError(t, err)
		assert.Equal(t, "  Laptop  ", m.String("name"))
	})

	t.Run("rejection aborts before field processing", func(t *testing.T) {
		t.Parallel()
		calls := 0
		s := schema.MustNew("S",
			schema.Field("a", schema.String(), schema.HookAny(func(v any) (any, error) {
				calls++
				return v, nil
			})),
			schema.Before(func(map[string]any) (map[string]any, error) {
				return nil, errors.New("input is not a record")
			}),
		)
		_, err := s.Validate(map[string]any{"a": "x"})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, schema.HookRejected, errs[0].Kind)
		assert.Empty(t, errs[0].Path)
		assert.Zero(t, calls)
	})
}

func TestValidate_FieldHooks(t *testing.T) {
	t.Parallel()

	notBlank := schema.Hook(func(v string) (string, error) {
		if strings.TrimSpace(v) == "" {
			return v, errors.New("Field cannot be empty or blank")
		}
		return v, nil
	})

	student := schema.MustNew("Student",
		schema.Field("roll_no", schema.Int()),
		schema.Field("name", schema.String()),
		schema.Field("grade", schema.String()),
		schema.ForFields([]string{"name", "grade"}, notBlank),
	)

	_, err := student.Validate(map[string]any{"roll_no": 1, "name": "  ", "grade": ""})
	errs := schema.ExtractValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"name", "grade"}, errs.Fields())
	assert.Equal(t, schema.HookRejected, errs[0].Kind)
	assert.Equal(t, "Field cannot be empty or blank", errs[0].Message)

	t.Run("hooks transform in order and stop at first rejection", func(t *testing.T) {
		t.Parallel()
		var seen []string
		s := schema.MustNew("S",
			schema.Field("code", schema.String(),
				schema.Hook(func(v string) (string, error) {
					seen = append(seen, "upper")
					return strings.ToUpper(v), nil
				}),
				schema.Hook(func(v string) (string, error) {
					seen = append(seen, "check")
					if v != "OK" {
						return v, errors.New("not ok")
					}
					return v, nil
				}),
				schema.Hook(func(v string) (string, error) {
					seen = append(seen, "never")
					return v, nil
				}),
			),
		)
		_, err := s.Validate(map[string]any{"code": "no"})
		require.Error(t, err)
		assert.Equal(t, []string{"upper", "check"}, seen)
	})

	t.Run("hooks do not run when constraints fail", func(t *testing.T) {
		t.Parallel()
		ran := false
		s := schema.MustNew("S",
			schema.Field("age", schema.Int(), schema.Between(1, 120), schema.HookAny(func(v any) (any, error) {
				ran = true
				return v, nil
			})),
		)
		_, err := s.Validate(map[string]any{"age": 121})
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("typed hook rejects other representations", func(t *testing.T) {
		t.Parallel()
		s := schema.MustNew("S",
			schema.Field("n", schema.Int(), schema.Hook(func(v int32) (int32, error) { return v, nil })),
		)
		_, err := s.Validate(map[string]any{"n": 1})
		errs := schema.ExtractValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "expected int32, got int", errs[0].Message)
	})
}

func TestValidate_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price := 100
			if i%2 == 1 {
				price = 1
			}
			_, err := book.Validate(map[string]any{"title": "Concurrent", "pages": i + 1, "price": price})
			if i%2 == 1 {
				assert.Len(t, schema.ExtractValidationErrors(err), 1)
			} else {
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
}
