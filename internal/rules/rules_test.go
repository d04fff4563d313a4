package rules

import (
	"testing"

	"github.com/abdoElHodaky/tradsys-lob/internal/price"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickRules() *TickSizeRules {
	return NewTickSizeRules([]TickInterval{
		{From: price.MustParse("0"), To: price.MustParse("1"), TickSize: 1}, // 0.0001
		{From: price.MustParse("1"), ToOpen: true, TickSize: 100},           // 0.01
	})
}

func TestTickSizeRulesScenario5(t *testing.T) {
	r := tickRules()

	ok, err := r.IsValid(price.MustParse("10.015"))
	require.NoError(t, err)
	assert.False(t, ok, "10.015 is not a multiple of 0.01 above 1")

	ok, err = r.IsValid(price.MustParse("0.1234"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsValid(price.MustParse("10.01"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTickSizeRulesEmptyPermissive(t *testing.T) {
	r := NewTickSizeRules(nil)
	ok, err := r.IsValid(price.MustParse("123.4567"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTickSizeRulesNoRuleBelowFirstBoundary(t *testing.T) {
	r := NewTickSizeRules([]TickInterval{
		{From: price.MustParse("1"), ToOpen: true, TickSize: 100},
	})
	_, err := r.IsValid(price.MustParse("0.5"))
	assert.ErrorIs(t, err, ErrNoRuleForPrice)
}

func TestLotSizeRulesClassify(t *testing.T) {
	r := NewLotSizeRules([]LotInterval{
		{From: price.MustParse("0"), ToOpen: true, Step: 100},
	})

	lt, err := r.Classify(price.MustParse("10"), 50)
	require.NoError(t, err)
	assert.Equal(t, OddLot, lt)

	lt, err = r.Classify(price.MustParse("10"), 200)
	require.NoError(t, err)
	assert.Equal(t, RoundLot, lt)

	lt, err = r.Classify(price.MustParse("10"), 150)
	require.NoError(t, err)
	assert.Equal(t, MixedLot, lt)
}

func TestLotSizeRulesEmptyIsAlwaysRoundLot(t *testing.T) {
	r := NewLotSizeRules(nil)
	lt, err := r.Classify(price.MustParse("10"), 7)
	require.NoError(t, err)
	assert.Equal(t, RoundLot, lt)
}

func TestSymbolSet(t *testing.T) {
	s := NewSymbolSet([]string{"AAPL", "MSFT"})
	assert.True(t, s.IsValid("AAPL"))
	assert.False(t, s.IsValid("TSLA"))
}
