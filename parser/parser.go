// Package parser implements Pass 1 (spec 4.D): a recursive-descent
// parser building a lossless AST over a token stream. Errors are
// collected, never thrown — a malformed input still produces a
// best-effort AST plus a full error list, mirroring the
// collect-don't-panic discipline of runtime/parser/parser.go and its
// ParseError/BracketTracker pattern (generalized here to a flat
// []*diag.Error slice since Gherkin has no bracket nesting to track).
package parser

import (
	"strings"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/ast"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/token"
)

const macroCallSuffix = " +"

// Result is the output of Parse: a best-effort AST plus every error
// encountered. An AST with any Errors is invalid for pickling (spec
// 4.D).
type Result struct {
	Feature *ast.Feature
	Errors  []*diag.Error
}

type parser struct {
	toks []token.Token
	pos  int
	errs []*diag.Error
}

// Parse builds a Feature AST from a complete token stream (as produced
// by lexer.Lex, including its trailing eof token).
func Parse(toks []token.Token) *Result {
	p := &parser{toks: toks}
	feature := p.parseFeature()
	return &Result{Feature: feature, Errors: p.errs}
}

func (p *parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.KindEOF}
}

func (p *parser) peekKind(offset int) token.Kind {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return token.KindEOF
	}
	return p.toks[i].Kind
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == token.KindEOF
}

func (p *parser) errorf(t diag.ErrType, loc location.Location, msg string) {
	p.errs = append(p.errs, diag.New(t, loc, msg, nil))
}

// skipNoise consumes empty and comment tokens that carry no AST
// significance of their own between structural elements, returning any
// comments encountered (for callers that attach them to a parent's
// Children, e.g. the feature level).
func (p *parser) skipNoise() []ast.Comment {
	var comments []ast.Comment
	for {
		switch p.cur().Kind {
		case token.KindEmpty:
			p.advance()
		case token.KindComment:
			t := p.advance()
			comments = append(comments, ast.Comment{Text: t.Text, Loc: t.Location})
		case token.KindLanguageHeader:
			p.advance()
		default:
			return comments
		}
	}
}

// collectTags gathers zero or more leading @tag lines immediately
// before a structural keyword line.
func (p *parser) collectTags() []ast.Tag {
	var tags []ast.Tag
	for {
		p.skipNoise()
		if p.cur().Kind != token.KindTag {
			return tags
		}
		for p.cur().Kind == token.KindTag {
			t := p.advance()
			tags = append(tags, ast.Tag{Name: t.Text, Loc: t.Location})
		}
	}
}

// collectDescriptions gathers the run of free-text lines between a
// header and the first structural child, dropping interleaved comments
// and blank lines (the lossless printer never consults the AST, so
// silently absorbing comments here does not threaten invariant 1).
func (p *parser) collectDescriptions() ast.Descriptions {
	var lines ast.Descriptions
	for {
		p.skipNoise()
		if p.cur().Kind != token.KindText {
			return lines
		}
		lines = append(lines, p.advance().Text)
	}
}

func (p *parser) parseFeature() *ast.Feature {
	f := &ast.Feature{}
	leadingComments := p.skipNoise()
	tags := p.collectTags()
	f.Tags = tags

	if p.cur().Kind != token.KindFeatureLine {
		if p.atEOF() && len(tags) == 0 && len(leadingComments) == 0 {
			// Genuinely empty input: not an error, just an empty AST.
			return f
		}
		p.errorf(diag.GherkinUnexpected, p.cur().Location,
			"expected a Feature: line, found "+string(p.cur().Kind))
		f.Loc = p.cur().Location
	} else {
		t := p.advance()
		f.Keyword = t.Keyword
		f.Name = t.Text
		f.Loc = t.Location
		if strings.TrimSpace(f.Name) == "" {
			p.errorf(diag.GherkinMissingName, t.Location, "Feature: requires a non-empty name")
		}
	}

	for _, c := range leadingComments {
		f.Children = append(f.Children, c)
	}
	f.Descriptions = p.collectDescriptions()

	for !p.atEOF() {
		noise := p.skipNoise()
		for _, c := range noise {
			f.Children = append(f.Children, c)
		}
		if p.atEOF() {
			break
		}

		tags := p.collectTags()

		switch p.cur().Kind {
		case token.KindBackgroundLine:
			if len(tags) > 0 {
				p.errorf(diag.GherkinUnexpected, p.cur().Location, "Background: does not accept tags")
			}
			bg := p.parseBackground()
			if f.Background != nil {
				p.errorf(diag.GherkinUnexpected, bg.Loc, "a feature may have only one Background:")
			}
			f.Background = bg
		case token.KindRuleLine:
			f.Children = append(f.Children, p.parseRule(tags))
		case token.KindScenarioLine:
			f.Children = append(f.Children, p.parseScenario(tags))
		case token.KindScenarioOutlineLine:
			f.Children = append(f.Children, p.parseScenarioOutline(tags))
		case token.KindEOF:
			return f
		default:
			bad := p.advance()
			p.errorf(diag.GherkinUnexpected, bad.Location, "unexpected "+string(bad.Kind)+" at feature level")
		}
	}
	return f
}

func (p *parser) parseBackground() *ast.Background {
	t := p.advance() // background_line
	b := &ast.Background{Keyword: t.Keyword, Name: t.Text, Loc: t.Location}
	b.Descriptions = p.collectDescriptions()
	b.Steps = p.parseSteps()
	return b
}

func (p *parser) parseRule(tags []ast.Tag) *ast.Rule {
	t := p.advance() // rule_line
	r := &ast.Rule{Tags: tags, Keyword: t.Keyword, Name: t.Text, Loc: t.Location}
	if strings.TrimSpace(r.Name) == "" {
		p.errorf(diag.GherkinMissingName, t.Location, "Rule: requires a non-empty name")
	}
	r.Descriptions = p.collectDescriptions()

	for {
		noise := p.skipNoise()
		for _, c := range noise {
			r.Children = append(r.Children, c)
		}
		if p.atEOF() {
			return r
		}
		childTags := p.collectTags()
		switch p.cur().Kind {
		case token.KindBackgroundLine:
			if len(childTags) > 0 {
				p.errorf(diag.GherkinUnexpected, p.cur().Location, "Background: does not accept tags")
			}
			if r.Background != nil {
				p.errorf(diag.GherkinUnexpected, p.cur().Location, "a rule may have only one Background:")
			}
			r.Background = p.parseBackground()
		case token.KindScenarioLine:
			r.Children = append(r.Children, p.parseScenario(childTags))
		case token.KindScenarioOutlineLine:
			r.Children = append(r.Children, p.parseScenarioOutline(childTags))
		default:
			return r
		}
	}
}

func (p *parser) parseScenario(tags []ast.Tag) *ast.Scenario {
	t := p.advance() // scenario_line
	s := &ast.Scenario{Tags: tags, Keyword: t.Keyword, Name: t.Text, Loc: t.Location}
	if strings.TrimSpace(s.Name) == "" {
		p.errorf(diag.GherkinMissingName, t.Location, "Scenario: requires a non-empty name")
	}
	s.Descriptions = p.collectDescriptions()
	s.Steps = p.parseSteps()
	return s
}

func (p *parser) parseScenarioOutline(tags []ast.Tag) *ast.ScenarioOutline {
	t := p.advance() // scenario_outline_line
	o := &ast.ScenarioOutline{Tags: tags, Keyword: t.Keyword, Name: t.Text, Loc: t.Location}
	if strings.TrimSpace(o.Name) == "" {
		p.errorf(diag.GherkinMissingName, t.Location, "Scenario Outline: requires a non-empty name")
	}
	o.Descriptions = p.collectDescriptions()
	o.Steps = p.parseSteps()

	seenNames := map[string]bool{}
	for {
		noise := p.skipNoise()
		_ = noise // comments between Examples blocks are dropped, not fatal
		if p.atEOF() {
			break
		}
		exTags := p.collectTags()
		if p.cur().Kind != token.KindExamplesLine {
			if len(exTags) > 0 {
				p.errorf(diag.GherkinUnexpected, p.cur().Location, "tags with no following Examples:")
			}
			break
		}
		ex := p.parseExamples(exTags)
		if ex.Name != "" {
			if seenNames[ex.Name] {
				p.errorf(diag.GherkinDupExamples, ex.Loc, "duplicate Examples: header \""+ex.Name+"\"")
			}
			seenNames[ex.Name] = true
		}
		o.Examples = append(o.Examples, *ex)
	}
	return o
}

func (p *parser) parseExamples(tags []ast.Tag) *ast.Examples {
	t := p.advance() // examples_line
	e := &ast.Examples{Tags: tags, Keyword: t.Keyword, Name: t.Text, Loc: t.Location}
	e.Descriptions = p.collectDescriptions()
	e.Table = p.parseDataTable()
	return e
}

func (p *parser) parseSteps() []ast.Step {
	var steps []ast.Step
	for {
		p.skipNoise()
		if p.cur().Kind != token.KindStepLine {
			return steps
		}
		t := p.advance()
		step := ast.Step{Keyword: t.Keyword, Text: t.Text, Loc: t.Location}
		step.IsMacroCall = strings.HasSuffix(t.Text, macroCallSuffix)

		if p.cur().Kind == token.KindDocstringSeparator {
			step.Docstring = p.parseDocstring()
		} else if p.cur().Kind == token.KindTableRow {
			step.Table = p.parseDataTable()
		}
		steps = append(steps, step)
	}
}

func (p *parser) parseDocstring() *ast.Docstring {
	open := p.advance() // opening fence
	d := &ast.Docstring{Fence: open.Text, MediaType: open.MediaType, Loc: open.Location}
	var lines []string
	for {
		if p.atEOF() {
			p.errorf(diag.GherkinDocstring, open.Location, "unterminated docstring opened at "+open.Location.String())
			break
		}
		if p.cur().Kind == token.KindDocstringSeparator {
			p.advance() // closing fence
			break
		}
		// Strip up to the opening fence's indentation from each content
		// line, so content is relative to the fence, not the file.
		text := p.advance().Text
		for i := 0; i < open.Indent && len(text) > 0 && (text[0] == ' ' || text[0] == '\t'); i++ {
			text = text[1:]
		}
		lines = append(lines, text)
	}
	d.Content = strings.Join(lines, "\n")
	return d
}

func (p *parser) parseDataTable() *ast.DataTable {
	if p.cur().Kind != token.KindTableRow {
		return nil
	}
	first := p.cur()
	dt := &ast.DataTable{Loc: first.Location}
	width := -1
	for p.cur().Kind == token.KindTableRow {
		row := p.advance()
		if width == -1 {
			width = len(row.Cells)
		} else if len(row.Cells) != width {
			p.errorf(diag.GherkinCellCount, row.Location,
				"table row has inconsistent cell count")
		}
		dt.Rows = append(dt.Rows, row.Cells)
		dt.RowLocs = append(dt.RowLocs, row.Location)
	}
	return dt
}
