package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, typ string, schema ...ConstraintSpec) *ArgValidator {
	t.Helper()
	v, err := CompileArgument(ArgumentDefinition{Name: "value", Type: mustType(t, typ), Desc: "test", Schema: schema})
	require.NoError(t, err)
	return v
}

func requireConstraintErr(t *testing.T, err error, kind ConstraintKind, index int, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArgumentConstraint), "got %v", err)
	var ce *ArgumentConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, string(kind), ce.Constraint)
	assert.Equal(t, index, ce.Index)
	assert.Contains(t, ce.Message, msg)
}

func TestParseConstraint(t *testing.T) {
	t.Run("range from positional params", func(t *testing.T) {
		c, err := ParseConstraint(ConstraintSpec{Name: "Range", Args: []any{0, 31}})
		require.NoError(t, err)
		r := c.(RangeConstraint)
		assert.Equal(t, "0", ratString(r.Min))
		assert.Equal(t, "31", ratString(r.Max))
		assert.True(t, r.MinIncluded)
		assert.True(t, r.MaxIncluded)
	})

	t.Run("range from keyword params", func(t *testing.T) {
		c, err := ParseConstraint(ConstraintSpec{Name: "Range", Kwargs: map[string]any{"min": 1, "max_included": false}})
		require.NoError(t, err)
		r := c.(RangeConstraint)
		assert.Nil(t, r.Max)
		assert.False(t, r.MaxIncluded)
	})

	errCases := []struct {
		name string
		spec ConstraintSpec
		want string
	}{
		{"unknown name", ConstraintSpec{Name: "Regex"}, `unknown constraint "Regex"`},
		{"params on parameterless", ConstraintSpec{Name: "binary_string", Args: []any{1}}, "takes no parameters"},
		{"empty kwargs on parameterless", ConstraintSpec{Name: "proto_pronto", Kwargs: map[string]any{}}, "takes no parameters"},
		{"min above max", ConstraintSpec{Name: "Range", Args: []any{10, 1}}, "greater than max"},
		{"too many positional", ConstraintSpec{Name: "Length", Args: []any{1, 2, "m", 4}}, "at most 3 positional"},
		{"unknown keyword", ConstraintSpec{Name: "Range", Kwargs: map[string]any{"step": 2}}, `unknown parameter "step"`},
		{"duplicate keyword", ConstraintSpec{Name: "Range", Args: []any{1}, Kwargs: map[string]any{"min": 2}}, `multiple values for parameter "min"`},
		{"non numeric bound", ConstraintSpec{Name: "Range", Args: []any{"low"}}, "min must be a number"},
		{"negative length", ConstraintSpec{Name: "Length", Args: []any{-1}}, "non-negative integer"},
		{"empty any", ConstraintSpec{Name: "Any"}, "at least one allowed value"},
		{"nested any value", ConstraintSpec{Name: "Any", Args: []any{[]any{1}}}, "must be a scalar"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConstraint(tt.spec)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.Equal(t, []string{"Range", "Any", "Length", "proto_pronto", "alternating_signs", "binary_string"}, ConstraintNames())
}

func TestRangeConstraint(t *testing.T) {
	v := compile(t, "uint8_t", ConstraintSpec{Name: "Range", Args: []any{0, 31}})
	got, err := v.Validate("0x1F")
	require.NoError(t, err)
	assert.Equal(t, uint64(31), got)

	_, err = v.Validate(32)
	requireConstraintErr(t, err, ConstraintRange, -1, "value must be at most 31")

	excl := compile(t, "float", ConstraintSpec{Name: "Range", Kwargs: map[string]any{"min": 0, "min_included": false, "msg": "must be positive"}})
	_, err = excl.Validate(0)
	requireConstraintErr(t, err, ConstraintRange, -1, "must be positive")

	list := compile(t, "int16_t[]", ConstraintSpec{Name: "Range", Args: []any{-10, 10}})
	_, err = list.Validate("1,2,11")
	requireConstraintErr(t, err, ConstraintRange, 2, "at most 10")
}

func TestAnyConstraint(t *testing.T) {
	v := compile(t, "uint8_t", ConstraintSpec{Name: "Any", Args: []any{12, 15, 20}})
	got, err := v.Validate("15")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), got)

	_, err = v.Validate(13)
	requireConstraintErr(t, err, ConstraintAny, -1, "value must be one of: 12, 15, 20")

	s := compile(t, "string", ConstraintSpec{Name: "Any", Args: []any{"A", "B"}})
	_, err = s.Validate(`"B"`)
	require.NoError(t, err)
}

func TestLengthConstraint(t *testing.T) {
	v := compile(t, "uint8_t[]", ConstraintSpec{Name: "Length", Kwargs: map[string]any{"min": 1, "max": 3}})
	_, err := v.Validate("1,2,3")
	require.NoError(t, err)

	_, err = v.Validate("1,2,3,4")
	requireConstraintErr(t, err, ConstraintLength, -1, "at most 3")

	_, err = v.Validate(nil)
	requireConstraintErr(t, err, ConstraintLength, -1, "at least 1")

	s := compile(t, "string", ConstraintSpec{Name: "Length", Args: []any{nil, 2}})
	_, err = s.Validate("äö")
	require.NoError(t, err)
}

func TestAlternatingSigns(t *testing.T) {
	v := compile(t, "int32_t[]", ConstraintSpec{Name: "alternating_signs"})

	got, err := v.Validate([]any{1, -2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(-2), int64(3)}, got)

	_, err = v.Validate([]any{1, 2, -3})
	requireConstraintErr(t, err, ConstraintAlternatingSigns, 1, "see index 0 and 1")

	_, err = v.Validate([]any{0, 5})
	requireConstraintErr(t, err, ConstraintAlternatingSigns, 1, "see index 0 and 1")
}

func TestBinaryString(t *testing.T) {
	v := compile(t, "string", ConstraintSpec{Name: "binary_string"})

	got, err := v.Validate("0101")
	require.NoError(t, err)
	assert.Equal(t, "0101", got)

	_, err = v.Validate("0102")
	requireConstraintErr(t, err, ConstraintBinaryString, -1, "but got '2'")
}

func TestProntoIsIdentity(t *testing.T) {
	v := compile(t, "string", ConstraintSpec{Name: "proto_pronto"})
	got, err := v.Validate("0000 006C 0022 0002")
	require.NoError(t, err)
	assert.Equal(t, "0000 006C 0022 0002", got)
}

func TestConstraintsRunInOrder(t *testing.T) {
	v := compile(t, "uint16_t",
		ConstraintSpec{Name: "Range", Args: []any{0, 100}},
		ConstraintSpec{Name: "Any", Args: []any{1, 2, 300}},
	)
	_, err := v.Validate(300)
	requireConstraintErr(t, err, ConstraintRange, -1, "at most 100")
}
