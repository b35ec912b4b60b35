// Package token defines the Token shape emitted by the lexer. Every
// Token carries the verbatim source substring it was lexed from (Raw),
// which is the sole input to the lossless printer: concatenating Raw
// over a full token stream reproduces the original input byte-for-byte.
//
// Grounded on the token-kind constant table style of
// runtime/lexer/tokens.go, adapted from opal's expression-language token
// kinds to Gherkin's line-kind taxonomy (spec §3).
package token

import "github.com/SHIFT-LEFTER/shiftlefter-sub001/location"

// Kind identifies the syntactic role of a token.
type Kind string

const (
	KindFeatureLine         Kind = "feature_line"
	KindBackgroundLine      Kind = "background_line"
	KindScenarioLine        Kind = "scenario_line"
	KindScenarioOutlineLine Kind = "scenario_outline_line"
	KindRuleLine            Kind = "rule_line"
	KindExamplesLine        Kind = "examples_line"
	KindStepLine            Kind = "step_line"
	KindTagLine             Kind = "tag_line"
	KindTag                 Kind = "tag"
	KindComment             Kind = "comment"
	KindDocstringSeparator  Kind = "docstring_separator"
	KindTableRow            Kind = "table_row"
	KindLanguageHeader      Kind = "language_header"
	KindEmpty               Kind = "empty"
	KindText                Kind = "text"
	KindEOF                 Kind = "eof"
)

// Token is a single lexical unit. Raw is the exact input substring
// (including its EOL, when the token is a full physical line) that
// produced this token; Text is the semantically meaningful residue
// (e.g. trimmed name, step text after keyword).
type Token struct {
	Kind     Kind
	Raw      string
	Text     string
	Location location.Location

	// LeadingWS is the horizontal whitespace preceding the meaningful
	// content on the line, preserved for lossless printing needs beyond
	// plain concatenation (diagnostics, canonical reformatting).
	LeadingWS string

	// Indent is the rune-width of LeadingWS.
	Indent int

	// Keyword is set for block-line and step-line tokens: the canonical
	// dialect keyword the line matched.
	Keyword string

	// Cells holds pre-split table cell text for KindTableRow tokens.
	Cells []string

	// MediaType holds the docstring fence's media type (e.g. "json"),
	// for KindDocstringSeparator tokens.
	MediaType string
}

// IsKeywordLine reports whether k is one of the line kinds produced by
// matching a dialect keyword (as opposed to comment/empty/table/etc).
func IsKeywordLine(k Kind) bool {
	switch k {
	case KindFeatureLine, KindBackgroundLine, KindScenarioLine,
		KindScenarioOutlineLine, KindRuleLine, KindExamplesLine, KindStepLine:
		return true
	}
	return false
}
