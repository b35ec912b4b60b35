package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/token"
)

func raw(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Raw)
	}
	return b.String()
}

func TestLex_RoundtripsArbitraryInput(t *testing.T) {
	input := "Feature: Login\n\n  Scenario: Happy path\n    Given I am logged out\n    When I log in\n    Then I see the dashboard\n"
	toks := lexer.New(nil).Lex(input)
	assert.Equal(t, input, raw(toks))
	assert.Equal(t, token.KindEOF, toks[len(toks)-1].Kind)
}

func TestLex_RoundtripsCRLFAndNoTrailingNewline(t *testing.T) {
	input := "Feature: X\r\n  Scenario: Y\r\n    Given a thing"
	toks := lexer.New(nil).Lex(input)
	assert.Equal(t, input, raw(toks))
}

func TestLex_FeatureLine(t *testing.T) {
	toks := lexer.New(nil).Lex("Feature: Login\n")
	require.Len(t, toks, 2)
	assert.Equal(t, token.KindFeatureLine, toks[0].Kind)
	assert.Equal(t, "Login", toks[0].Text)
	assert.Equal(t, "feature", toks[0].Keyword)
}

func TestLex_ScenarioOutlineBeatsScenario(t *testing.T) {
	toks := lexer.New(nil).Lex("Scenario Outline: Login attempts\n")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.KindScenarioOutlineLine, toks[0].Kind)
	assert.Equal(t, "Login attempts", toks[0].Text)
}

func TestLex_StepLine_TrimsTrailingNotLeading(t *testing.T) {
	toks := lexer.New(nil).Lex("  Given I type \"x\"   \n")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.KindStepLine, toks[0].Kind)
	assert.Equal(t, "given", toks[0].Keyword)
	assert.Equal(t, `I type "x"`, toks[0].Text)
}

func TestLex_StarStep(t *testing.T) {
	toks := lexer.New(nil).Lex("* I am logged in\n")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.KindStepLine, toks[0].Kind)
	assert.Equal(t, "star", toks[0].Keyword)
	assert.Equal(t, "I am logged in", toks[0].Text)
}

func TestLex_CommentLine(t *testing.T) {
	toks := lexer.New(nil).Lex("# just a note\n")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.KindComment, toks[0].Kind)
	assert.Equal(t, "just a note", toks[0].Text)
}

func TestLex_LanguageHeaderDetectedAsDistinctFromComment(t *testing.T) {
	toks := lexer.New(nil).Lex("# language: de\nFunktionalität: X\n")
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.KindLanguageHeader, toks[0].Kind)
	assert.Equal(t, "de", toks[0].Text)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "fr", lexer.DetectLanguage("# language: fr\nFonctionnalité: X\n"))
	assert.Equal(t, "", lexer.DetectLanguage("Feature: X\n"))
}

func TestLex_TableRow(t *testing.T) {
	toks := lexer.New(nil).Lex("| a | b c | d\\|e |\n")
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.KindTableRow, toks[0].Kind)
	assert.Equal(t, []string{"a", "b c", "d|e"}, toks[0].Cells)
}

func TestLex_DocstringOpenTextClose(t *testing.T) {
	input := "  \"\"\"json\n  {\"a\":1}\n  \"\"\"\n"
	toks := lexer.New(nil).Lex(input)
	require.Len(t, toks, 4) // open, text, close, eof
	assert.Equal(t, token.KindDocstringSeparator, toks[0].Kind)
	assert.Equal(t, "json", toks[0].MediaType)
	assert.Equal(t, token.KindText, toks[1].Kind)
	assert.Equal(t, token.KindDocstringSeparator, toks[2].Kind)
	assert.Equal(t, input, raw(toks))
}

func TestLex_KeywordLookingTextInsideDocstringStaysText(t *testing.T) {
	input := "\"\"\"\nFeature: not actually a header\n\"\"\"\n"
	toks := lexer.New(nil).Lex(input)
	assert.Equal(t, token.KindText, toks[1].Kind)
}

func TestLex_TagLine_SplitsAtomsAndRoundtrips(t *testing.T) {
	input := "  @fast @wip  \n"
	toks := lexer.New(nil).Lex(input)
	var tags []token.Token
	for _, tk := range toks {
		if tk.Kind == token.KindTag {
			tags = append(tags, tk)
		}
	}
	require.Len(t, tags, 2)
	assert.Equal(t, "fast", tags[0].Text)
	assert.Equal(t, "wip", tags[1].Text)
	assert.Equal(t, input, raw(toks))
}

func TestLex_BlockKeywordWithoutColonFallsBackToText(t *testing.T) {
	toks := lexer.New(nil).Lex("Feature without a colon\n")
	assert.Equal(t, token.KindText, toks[0].Kind)
}

func TestLex_EmptyLine(t *testing.T) {
	toks := lexer.New(nil).Lex("\n")
	assert.Equal(t, token.KindEmpty, toks[0].Kind)
}

func TestLex_GermanDialect(t *testing.T) {
	tbl, ok := dialect.Load("de")
	require.True(t, ok)
	toks := lexer.New(tbl).Lex("Angenommen ich bin angemeldet\n")
	assert.Equal(t, token.KindStepLine, toks[0].Kind)
	assert.Equal(t, "given", toks[0].Keyword)
}

func TestLex_EmptyInputYieldsOnlyEOF(t *testing.T) {
	toks := lexer.New(nil).Lex("")
	require.Len(t, toks, 1)
	assert.Equal(t, token.KindEOF, toks[0].Kind)
}
