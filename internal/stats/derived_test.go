package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasserRating(t *testing.T) {
	got := PasserRating(20, 30, 250, 2, 1)
	require.NotNil(t, got)
	assert.Equal(t, 100.694, *got)

	// every component saturates at 2.375
	got = PasserRating(10, 10, 300, 5, 0)
	require.NotNil(t, got)
	assert.Equal(t, 158.333, *got)

	// and none go below zero
	got = PasserRating(0, 10, 0, 0, 5)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)

	assert.Nil(t, PasserRating(0, 0, 0, 0, 0))
}

func TestPassingRates(t *testing.T) {
	assert.Equal(t, fv(66.667), CompletionPct(20, 30))
	assert.Equal(t, fv(0.067), PassTDRate(2, 30))
	assert.Equal(t, fv(0.033), InterceptionRate(1, 30))
	assert.Equal(t, fv(8.333), YardsPerAttempt(250, 30))
	assert.Equal(t, fv(8.167), AdjustedYardsPerAttempt(250, 2, 1, 30))
	assert.Equal(t, fv(12.5), YardsPerCompletion(250, 20))
	assert.Equal(t, fv(152.0), CollegePasserRating(20, 30, 250, 2, 1))
}

func TestZeroDenominatorIsUnavailable(t *testing.T) {
	assert.Nil(t, CompletionPct(0, 0))
	assert.Nil(t, YardsPerCompletion(10, 0))
	assert.Nil(t, CollegePasserRating(0, 0, 0, 0, 0))
	assert.Nil(t, Average(12, 0))
	assert.Nil(t, CatchPct(0, 0))
	assert.Nil(t, MakePct(0, 0))
	assert.Nil(t, PerGame(100, 0))

	// a zero numerator is a real rate
	assert.Equal(t, fv(0), CompletionPct(0, 4))
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.235, Round3(1.2346))
	assert.Equal(t, 2.0, Round3(1.9996))
	assert.Equal(t, -1.235, Round3(-1.2346))
}

func TestDerivedIsIdempotent(t *testing.T) {
	a := PasserRating(17, 29, 231, 1, 2)
	b := PasserRating(17, 29, 231, 1, 2)
	assert.Equal(t, a, b)
}
