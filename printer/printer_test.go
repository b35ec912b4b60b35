package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/printer"
)

func parse(t *testing.T, src string) *parser.Result {
	t.Helper()
	toks := lexer.New(dialect.Default()).Lex(src)
	r := parser.Parse(toks)
	require.Empty(t, r.Errors)
	return r
}

func TestLossless_RoundTripsArbitraryInput(t *testing.T) {
	src := "@wip\nFeature: Weird   spacing\n\n  Scenario: S\n    Given a thing\n      | a | b |\n      | 1 | 2 |\n"
	toks := lexer.New(dialect.Default()).Lex(src)
	assert.Equal(t, src, printer.Lossless(toks))
}

func TestLossless_EmptyInput(t *testing.T) {
	toks := lexer.New(dialect.Default()).Lex("")
	assert.Equal(t, "", printer.Lossless(toks))
}

func TestCanonical_NormalizesSpacingAndTags(t *testing.T) {
	src := "@wip   @smoke\nFeature:    F\nSome description\n\n  Scenario: S\n    Given a thing\n"
	r := parse(t, src)

	out, derr := printer.Canonical(r.Feature)
	require.Nil(t, derr)
	assert.Equal(t, "@wip @smoke\nFeature: F\n  Some description\n\n  Scenario: S\n    Given a thing\n", out)
}

func TestCanonical_StepKeywordsDisplayCanonicalForm(t *testing.T) {
	src := "Feature: F\n  Scenario: S\n    Given a\n    And b\n    * c\n"
	r := parse(t, src)

	out, derr := printer.Canonical(r.Feature)
	require.Nil(t, derr)
	assert.Contains(t, out, "Given a")
	assert.Contains(t, out, "And b")
	assert.Contains(t, out, "* c")
}

func TestCanonical_RejectsRuleBlocks(t *testing.T) {
	src := "Feature: F\n  Rule: R\n    Scenario: S\n      Given a\n"
	r := parse(t, src)

	out, derr := printer.Canonical(r.Feature)
	assert.Equal(t, "", out)
	require.NotNil(t, derr)
	assert.Equal(t, "canonical/rules_unsupported", string(derr.Type))
}

func TestCanonical_IsIdempotent(t *testing.T) {
	src := "@a\nFeature: F\n\n\n\n  Background:\n    Given setup\n\n  Scenario: S\n    Given a thing\n    When something\n    Then it works\n\n  Scenario Outline: O\n    Given a <x>\n\n    Examples:\n      | x |\n      | 1 |\n"
	r := parse(t, src)

	first, derr := printer.Canonical(r.Feature)
	require.Nil(t, derr)

	r2 := parse(t, first)
	second, derr2 := printer.Canonical(r2.Feature)
	require.Nil(t, derr2)

	assert.Equal(t, first, second)
}

func TestCanonical_CollapsesBlankRuns(t *testing.T) {
	src := "Feature: F\n\n\n\n  Scenario: S\n    Given a\n"
	r := parse(t, src)

	out, derr := printer.Canonical(r.Feature)
	require.Nil(t, derr)
	assert.NotContains(t, out, "\n\n\n")
}

func TestCanonical_TableColumnsAligned(t *testing.T) {
	src := "Feature: F\n  Scenario Outline: O\n    Given a <x>\n\n    Examples:\n      | x | longname |\n      | 1 | z        |\n"
	r := parse(t, src)

	out, derr := printer.Canonical(r.Feature)
	require.Nil(t, derr)
	assert.Contains(t, out, "| x | longname |")
	assert.Contains(t, out, "| 1 | z        |")
}

func TestCanonical_EmptyFeatureProducesEmptyOutput(t *testing.T) {
	r := parse(t, "")
	out, derr := printer.Canonical(r.Feature)
	assert.Nil(t, derr)
	assert.Equal(t, "", out)
}
