package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
)

func TestLookup_LongestMatchWins(t *testing.T) {
	tbl, ok := dialect.Load("en")
	require.True(t, ok)

	prefix, kw, ok := tbl.Lookup("Scenario Outline: Login")
	require.True(t, ok)
	assert.Equal(t, "Scenario Outline", prefix)
	assert.Equal(t, dialect.ScenarioOutline, kw)
}

func TestLookup_PlainScenarioNotShadowedByOutline(t *testing.T) {
	tbl := dialect.Default()
	_, kw, ok := tbl.Lookup("Scenario: Login")
	require.True(t, ok)
	assert.Equal(t, dialect.Scenario, kw)
}

func TestLookup_StarKeyword(t *testing.T) {
	tbl := dialect.Default()
	_, kw, ok := tbl.Lookup("* I am logged in")
	require.True(t, ok)
	assert.Equal(t, dialect.Star, kw)
}

func TestLookup_NoMatch(t *testing.T) {
	tbl := dialect.Default()
	_, _, ok := tbl.Lookup("not a keyword line")
	assert.False(t, ok)
}

func TestLoad_UnknownLanguage(t *testing.T) {
	_, ok := dialect.Load("xx")
	assert.False(t, ok)
}

func TestLoad_EmptyDefaultsToEnglish(t *testing.T) {
	tbl, ok := dialect.Load("")
	require.True(t, ok)
	assert.Equal(t, "en", tbl.Language)
}

func TestGermanDialect(t *testing.T) {
	tbl, ok := dialect.Load("de")
	require.True(t, ok)
	_, kw, ok := tbl.Lookup("Angenommen ich bin angemeldet")
	require.True(t, ok)
	assert.Equal(t, dialect.Given, kw)
}

func TestBlockAndStepKeywordSets(t *testing.T) {
	assert.True(t, dialect.BlockKeywords[dialect.Feature])
	assert.False(t, dialect.BlockKeywords[dialect.Given])
	assert.True(t, dialect.StepKeywords[dialect.Given])
	assert.False(t, dialect.StepKeywords[dialect.Feature])
}
