package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePatternPriority(t *testing.T) {
	// "Price" alone must lose to the higher-priority "Last Sale Amount".
	cols := []string{"Price", "Last Sale Amount", "Living Square Feet"}
	res := Resolve(cols, CompRules())

	col, ok := res.Column(FieldPrice)
	require.True(t, ok)
	assert.Equal(t, "Last Sale Amount", col)

	col, ok = res.Column(FieldLivingArea)
	require.True(t, ok)
	assert.Equal(t, "Living Square Feet", col)
}

func TestResolveCaseInsensitiveSubstring(t *testing.T) {
	cols := []string{"  LAST SALE AMOUNT ($) ", "Total Living Square Feet"}
	res := Resolve(cols, CompRules())

	col, ok := res.Column(FieldPrice)
	require.True(t, ok)
	assert.Equal(t, "  LAST SALE AMOUNT ($) ", col)

	col, ok = res.Column(FieldLivingArea)
	require.True(t, ok)
	assert.Equal(t, "Total Living Square Feet", col)
}

func TestResolveColumnOrderBreaksTies(t *testing.T) {
	// Both columns match the same "price" pattern; the earlier one wins.
	cols := []string{"Sale Price A", "Sale Price B"}
	res := Resolve(cols, CompRules())

	col, ok := res.Column(FieldPrice)
	require.True(t, ok)
	assert.Equal(t, "Sale Price A", col)
}

func TestResolveDeterministic(t *testing.T) {
	cols := []string{"Address", "City", "State", "Zip", "Living Square Feet", "Listing Price", "Condition"}
	first := Resolve(cols, PropertyRules())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(cols, PropertyRules()))
	}
}

func TestResolveUnmatchedFieldAbsent(t *testing.T) {
	cols := []string{"Address", "City"}
	res := Resolve(cols, CompRules())

	_, ok := res.Column(FieldPrice)
	assert.False(t, ok)
	_, ok = res.Column(FieldLivingArea)
	assert.False(t, ok)
}

func TestRequireReportsPatternsAndColumns(t *testing.T) {
	cols := []string{"Address", "City"}
	rules := CompRules()
	res := Resolve(cols, rules)

	err := Require(res, cols, rules, FieldPrice, FieldLivingArea)
	require.Error(t, err)

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, FieldPrice, unresolved.Field)
	assert.Contains(t, err.Error(), "last sale amount")
	assert.Contains(t, err.Error(), "Address")
}

func TestRequirePassesWhenResolved(t *testing.T) {
	cols := []string{"Last Sale Amount", "Living Square Feet"}
	rules := CompRules()
	res := Resolve(cols, rules)
	assert.NoError(t, Require(res, cols, rules, FieldPrice, FieldLivingArea))
}
