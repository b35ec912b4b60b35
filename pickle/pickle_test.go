package pickle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
)

func pickles(t *testing.T, src string) []*pickle.Pickle {
	t.Helper()
	res := parser.Parse(lexer.New(nil).Lex(src))
	require.Empty(t, res.Errors)
	plans := pickle.Extract(res.Feature)
	return pickle.Materialize(plans)
}

func TestMaterialize_PlainScenario(t *testing.T) {
	pks := pickles(t, "Feature: F\n\n  Scenario: S\n    Given a\n    When b\n")
	require.Len(t, pks, 1)
	assert.Equal(t, "S", pks[0].Name)
	require.Len(t, pks[0].Steps, 2)
	assert.NotEmpty(t, pks[0].ID)
	assert.Nil(t, pks[0].RowLoc)
}

func TestMaterialize_EmptyScenarioHasZeroSteps(t *testing.T) {
	pks := pickles(t, "Feature: F\n\n  Background: bg\n    Given setup\n\n  Scenario: S\n")
	require.Len(t, pks, 1)
	assert.Empty(t, pks[0].Steps)
}

func TestMaterialize_BackgroundInjectionOrder(t *testing.T) {
	src := "Feature: F\n\n  Background: bg\n    Given feature setup\n\n  Rule: R\n    Background: rbg\n      Given rule setup\n\n    Scenario: S\n      When x\n"
	pks := pickles(t, src)
	require.Len(t, pks, 1)
	require.Len(t, pks[0].Steps, 3)
	assert.Equal(t, pickle.OriginFeatureBackground, pks[0].Steps[0].Origin)
	assert.Equal(t, pickle.OriginRuleBackground, pks[0].Steps[1].Origin)
	assert.Equal(t, pickle.OriginScenario, pks[0].Steps[2].Origin)
}

func TestMaterialize_TagInheritanceDedup(t *testing.T) {
	src := "@feat\n@shared\nFeature: F\n\n  @shared\n  @scen\n  Scenario: S\n    Given x\n"
	pks := pickles(t, src)
	require.Len(t, pks, 1)
	assert.Equal(t, []string{"feat", "shared", "scen"}, pks[0].Tags)
}

func TestMaterialize_OutlineExpandsOneRowPerPickle(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n    Given I have <n>\n\n    Examples:\n      | n |\n      | 1 |\n      | 2 |\n"
	pks := pickles(t, src)
	require.Len(t, pks, 2)
	assert.Equal(t, "I have 1", pks[0].Steps[0].Text)
	assert.Equal(t, "I have 2", pks[1].Steps[0].Text)
	require.NotNil(t, pks[0].RowLoc)
	assert.NotEqual(t, pks[0].ID, pks[1].ID)
}

func TestMaterialize_OutlineSubstitutesNameAndTable(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: login as <role>\n    Given a table\n      | col |\n      | <role> |\n\n    Examples:\n      | role |\n      | admin |\n"
	pks := pickles(t, src)
	require.Len(t, pks, 1)
	assert.Equal(t, "login as admin", pks[0].Name)
	require.NotNil(t, pks[0].Steps[0].Table)
	assert.Equal(t, "admin", pks[0].Steps[0].Table.Rows[1][0])
}

func TestMaterialize_OutlineWithoutExamplesFallsBackToPlainScenario(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n    Given a thing\n"
	pks := pickles(t, src)
	require.Len(t, pks, 1)
	assert.Nil(t, pks[0].RowLoc)
}

func TestMaterialize_OutlineRowMetadataMatchesS2(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n" +
		"    When I log in as \"<username>\" with role <role>\n\n" +
		"    Examples:\n      | role  | username |\n      | admin | alice    |\n      | user  | bob      |\n"
	pks := pickles(t, src)
	require.Len(t, pks, 2)

	first := pks[0]
	assert.Equal(t, "O", first.TemplateName)
	assert.Equal(t, 0, first.RowIndex)
	assert.Equal(t, map[string]string{"role": "admin", "username": "alice"}, first.RowValues)
	require.Len(t, first.Steps, 1)
	assert.Equal(t, `I log in as "alice" with role admin`, first.Steps[0].Text)
	assert.Equal(t, `I log in as "<username>" with role <role>`, first.Steps[0].TemplateText)
	require.NotNil(t, first.RowLoc)

	second := pks[1]
	assert.Equal(t, "O", second.TemplateName)
	assert.Equal(t, 1, second.RowIndex)
	assert.Equal(t, map[string]string{"role": "user", "username": "bob"}, second.RowValues)
}

func TestMaterialize_PlainScenarioHasNoTemplateText(t *testing.T) {
	pks := pickles(t, "Feature: F\n\n  Scenario: S\n    Given a\n")
	require.Len(t, pks, 1)
	assert.Empty(t, pks[0].TemplateName)
	assert.Equal(t, 0, pks[0].RowIndex)
	assert.Nil(t, pks[0].RowValues)
	assert.Empty(t, pks[0].Steps[0].TemplateText)
}

func TestMaterialize_LongerPlaceholderNameWinsOverPrefix(t *testing.T) {
	src := "Feature: F\n\n  Scenario Outline: O\n    Given <x> and <xy>\n\n    Examples:\n      | x | xy |\n      | 1 | 2 |\n"
	pks := pickles(t, src)
	require.Len(t, pks, 1)
	assert.Equal(t, "1 and 2", pks[0].Steps[0].Text)
}
