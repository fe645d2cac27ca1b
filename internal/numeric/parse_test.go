package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Absent(t *testing.T) {
	_, ok := Parse(nil)
	assert.False(t, ok)

	for _, s := range []string{"", "   ", "-", "—", "–"} {
		s := s
		_, ok := Parse(&s)
		assert.False(t, ok, "expected %q to be absent", s)
	}
}

func TestParse_CommaSeparatedInteger(t *testing.T) {
	s := "1,234,567"
	v, ok := Parse(&s)
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(1234567)))
}

func TestParse_DecimalMixedWithComma(t *testing.T) {
	s := "12,345.67"
	v, ok := Parse(&s)
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromFloat(12345.67)))
}

func TestParse_Unparseable(t *testing.T) {
	s := "N/A"
	_, ok := Parse(&s)
	assert.False(t, ok)
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{"", "abc", "1.2.3", "   -   ", "\t\n", "١٢٣"}
	for _, in := range inputs {
		in := in
		assert.NotPanics(t, func() {
			Parse(&in)
		})
	}
}

// TestParse_Idempotent covers P3: parse(format(parse(x))) == parse(x).
func TestParse_Idempotent(t *testing.T) {
	inputs := []string{"1,234.50", "0", "-100", "99,999"}
	for _, in := range inputs {
		in := in
		v1, ok1 := Parse(&in)
		require.True(t, ok1)
		formatted := Format(v1)
		v2, ok2 := Parse(&formatted)
		require.True(t, ok2)
		assert.True(t, v1.Equal(v2))
	}
}
