package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/ast"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
)

func parse(src string) *parser.Result {
	return parser.Parse(lexer.New(nil).Lex(src))
}

func TestParse_SimpleFeatureScenario(t *testing.T) {
	res := parse("Feature: Login\n\n  Scenario: Happy path\n    Given a user\n    When they log in\n    Then they see the dashboard\n")
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Feature)
	assert.Equal(t, "Login", res.Feature.Name)
	require.Len(t, res.Feature.Children, 1)
	sc, ok := res.Feature.Children[0].(*ast.Scenario)
	require.True(t, ok)
	assert.Equal(t, "Happy path", sc.Name)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "given", sc.Steps[0].Keyword)
}

func TestParse_BackgroundAndTags(t *testing.T) {
	src := "Feature: F\n\n  Background: setup\n    Given a clean slate\n\n  @fast @wip\n  Scenario: S\n    When x\n"
	res := parse(src)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Feature.Background)
	assert.Equal(t, "setup", res.Feature.Background.Name)
	sc := res.Feature.Children[0].(*ast.Scenario)
	require.Len(t, sc.Tags, 2)
	assert.Equal(t, "fast", sc.Tags[0].Name)
	assert.Equal(t, "wip", sc.Tags[1].Name)
}

func TestParse_ScenarioOutlineWithExamples(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n    Given <x>\n\n    Examples:\n      | x |\n      | 1 |\n      | 2 |\n"
	res := parse(src)
	require.Empty(t, res.Errors)
	outline := res.Feature.Children[0].(*ast.ScenarioOutline)
	require.Len(t, outline.Examples, 1)
	require.NotNil(t, outline.Examples[0].Table)
	assert.Equal(t, [][]string{{"x"}, {"1"}, {"2"}}, outline.Examples[0].Table.Rows)
}

func TestParse_MissingFeatureNameIsError(t *testing.T) {
	res := parse("Feature:\n")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "gherkin/missing_name", string(res.Errors[0].Type))
}

func TestParse_InconsistentCellCount(t *testing.T) {
	src := "Feature: F\n\n  Scenario: S\n    Given a table\n      | a | b |\n      | 1 |\n"
	res := parse(src)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "gherkin/inconsistent_cell_count", string(res.Errors[0].Type))
}

func TestParse_UnterminatedDocstring(t *testing.T) {
	src := "Feature: F\n\n  Scenario: S\n    Given a thing\n      \"\"\"\n      still open\n"
	res := parse(src)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "gherkin/docstring_unterminated", string(res.Errors[0].Type))
}

func TestParse_DuplicateExamplesHeader(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n    Given <x>\n\n    Examples: dup\n      | x |\n      | 1 |\n\n    Examples: dup\n      | x |\n      | 2 |\n"
	res := parse(src)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "gherkin/duplicate_examples_header", string(res.Errors[0].Type))
}

func TestParse_MacroCallStepFlagged(t *testing.T) {
	src := "Feature: F\n\n  Scenario: S\n    Given a login macro +\n"
	res := parse(src)
	require.Empty(t, res.Errors)
	sc := res.Feature.Children[0].(*ast.Scenario)
	assert.True(t, sc.Steps[0].IsMacroCall)
	assert.Equal(t, ast.KindMacroStep, sc.Steps[0].Kind())
}

func TestParse_DocstringContent(t *testing.T) {
	src := "Feature: F\n\n  Scenario: S\n    Given json input\n      \"\"\"json\n      {\"a\":1}\n      \"\"\"\n"
	res := parse(src)
	require.Empty(t, res.Errors)
	sc := res.Feature.Children[0].(*ast.Scenario)
	require.NotNil(t, sc.Steps[0].Docstring)
	assert.Equal(t, "json", sc.Steps[0].Docstring.MediaType)
	assert.Equal(t, `{"a":1}`, sc.Steps[0].Docstring.Content)
}

func TestParse_RuleWithBackgroundAndScenario(t *testing.T) {
	src := "Feature: F\n\n  Rule: R\n    Background: b\n      Given setup\n\n    Scenario: S\n      When x\n"
	res := parse(src)
	require.Empty(t, res.Errors)
	r := res.Feature.Children[0].(*ast.Rule)
	require.NotNil(t, r.Background)
	require.Len(t, r.Children, 1)
	assert.Equal(t, ast.KindScenario, r.Children[0].Kind())
}

func TestParse_EmptyInputYieldsEmptyFeatureNoErrors(t *testing.T) {
	res := parse("")
	require.Empty(t, res.Errors)
	assert.True(t, res.Feature.Empty())
}
