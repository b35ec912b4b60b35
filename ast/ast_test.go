package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/ast"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
)

func TestStepKind_MacroCallDistinguishedFromPlainStep(t *testing.T) {
	plain := ast.Step{Keyword: "given", Text: "I am logged in"}
	call := ast.Step{Keyword: "given", Text: "a login macro +", IsMacroCall: true}

	assert.Equal(t, ast.KindStep, plain.Kind())
	assert.Equal(t, ast.KindMacroStep, call.Kind())
}

func TestNodeLocationsRoundtrip(t *testing.T) {
	loc := location.Location{Line: 4, Column: 2}
	f := &ast.Feature{Name: "Login", Loc: loc}
	assert.Equal(t, loc, f.Location())
	assert.Equal(t, ast.KindFeature, f.Kind())
}

func TestFeatureEmpty(t *testing.T) {
	var f *ast.Feature
	assert.True(t, f.Empty())

	f = &ast.Feature{}
	assert.True(t, f.Empty())

	f = &ast.Feature{Name: "X"}
	assert.False(t, f.Empty())
}

func TestRuleAndOutlineChildrenHoldMixedNodeKinds(t *testing.T) {
	outline := &ast.ScenarioOutline{
		Name: "Attempts",
		Examples: []ast.Examples{
			{Name: "rows", Table: &ast.DataTable{Rows: [][]string{{"a"}, {"1"}}}},
		},
	}
	rule := &ast.Rule{
		Name: "R",
		Children: []ast.Node{
			outline,
			ast.Comment{Text: "note"},
		},
	}
	assert.Equal(t, ast.KindRule, rule.Kind())
	assert.Equal(t, ast.KindScenarioOutline, rule.Children[0].Kind())
	assert.Equal(t, ast.KindComment, rule.Children[1].Kind())
}
