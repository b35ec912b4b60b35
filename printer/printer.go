// Package printer implements the two output surfaces over the lossless
// pipeline (spec 4.K/4.L): Lossless, a pure token-concatenation
// roundtrip, and Canonical, a normalizing formatter over the AST.
//
// The canonicalization idiom — walk a tree, rebuild a deterministic
// serialized form, never touch the source representation once building
// starts — is grounded on core/planfmt/canonical.go's Canonicalize,
// adapted here from "build a hashable struct" to "build normalized
// Gherkin text"; the two-space/four-space indentation ladder and
// keyword casing are this package's own design decisions where spec
// §4.L leaves specifics unstated (recorded in DESIGN.md).
package printer

import (
	"strings"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/ast"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/token"
)

// Lossless concatenates every token's Raw field, and only that field.
// Its signature — the sole parameter is []token.Token — structurally
// enforces spec §9's "MUST NOT consult the AST": there is no AST value
// in scope for this function to reach for.
func Lossless(tokens []token.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Raw)
	}
	return b.String()
}

// Canonical produces f's normalized textual form: single LF line
// endings, a single space between adjacent tags, two-space indentation
// under Feature, four-space indentation under steps, collapsed blank
// runs (at most one blank line between blocks), and lowercase step
// keywords save for the line's leading capitalization. Any `Rule` node
// anywhere in f makes canonical formatting unsupported; this is checked
// up front, not discovered mid-walk.
func Canonical(f *ast.Feature) (string, *diag.Error) {
	if f.Empty() {
		return "", nil
	}
	if containsRule(f) {
		return "", diag.New(diag.CanonicalRulesUnsup, f.Loc,
			"canonical formatting does not support Rule blocks", nil)
	}

	var b strings.Builder
	w := &writer{b: &b}
	w.feature(f)
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func containsRule(f *ast.Feature) bool {
	for _, c := range f.Children {
		if c.Kind() == ast.KindRule {
			return true
		}
	}
	return false
}

// writer accumulates canonical output. It never looks at Token or Raw
// fields — Canonical's whole point is to rebuild text from structured
// data, the opposite of Lossless.
type writer struct {
	b          *strings.Builder
	blankAfter bool
}

func (w *writer) line(indent int, text string) {
	if text == "" {
		if w.blankAfter {
			return
		}
		w.b.WriteByte('\n')
		w.blankAfter = true
		return
	}
	w.b.WriteString(strings.Repeat("  ", indent))
	w.b.WriteString(text)
	w.b.WriteByte('\n')
	w.blankAfter = false
}

func (w *writer) tags(indent int, tags []ast.Tag) {
	if len(tags) == 0 {
		return
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = "@" + t.Name
	}
	w.line(indent, strings.Join(names, " "))
}

func (w *writer) descriptions(indent int, d ast.Descriptions) {
	for _, line := range d {
		w.line(indent, line)
	}
}

func (w *writer) feature(f *ast.Feature) {
	w.tags(0, f.Tags)
	w.line(0, header("Feature", f.Name))
	w.descriptions(1, f.Descriptions)
	if f.Background != nil {
		w.line(0, "")
		w.background(f.Background)
	}
	for _, c := range f.Children {
		w.line(0, "")
		switch n := c.(type) {
		case *ast.Scenario:
			w.scenario(n)
		case *ast.ScenarioOutline:
			w.outline(n)
		case ast.Comment:
			w.line(1, "# "+n.Text)
		}
	}
}

func (w *writer) background(b *ast.Background) {
	w.line(1, header("Background", b.Name))
	w.descriptions(2, b.Descriptions)
	w.steps(2, b.Steps)
}

func (w *writer) scenario(s *ast.Scenario) {
	w.tags(1, s.Tags)
	w.line(1, header("Scenario", s.Name))
	w.descriptions(2, s.Descriptions)
	w.steps(2, s.Steps)
}

func (w *writer) outline(o *ast.ScenarioOutline) {
	w.tags(1, o.Tags)
	w.line(1, header("Scenario Outline", o.Name))
	w.descriptions(2, o.Descriptions)
	w.steps(2, o.Steps)
	for _, ex := range o.Examples {
		w.line(0, "")
		w.examples(ex)
	}
}

func (w *writer) examples(e ast.Examples) {
	w.tags(1, e.Tags)
	w.line(1, header("Examples", e.Name))
	w.descriptions(2, e.Descriptions)
	if e.Table != nil {
		w.table(2, e.Table)
	}
}

// stepKeywordDisplay renders the canonical lowercase dialect.Keyword
// values ast.Step.Keyword carries (e.g. "given", "star") back into the
// display form a reader expects. Canonical output always uses these
// English display forms regardless of the source dialect — canonical
// formatting normalizes for deterministic comparison, it does not
// preserve the original language (see DESIGN.md).
var stepKeywordDisplay = map[string]string{
	"given": "Given", "when": "When", "then": "Then",
	"and": "And", "but": "But", "star": "*",
}

func displayStepKeyword(kw string) string {
	if d, ok := stepKeywordDisplay[kw]; ok {
		return d
	}
	return kw
}

func (w *writer) steps(indent int, steps []ast.Step) {
	for _, s := range steps {
		w.line(indent, displayStepKeyword(s.Keyword)+" "+s.Text)
		if s.Docstring != nil {
			w.docstring(indent+1, s.Docstring)
		}
		if s.Table != nil {
			w.table(indent+1, s.Table)
		}
	}
}

func (w *writer) docstring(indent int, d *ast.Docstring) {
	fence := d.Fence
	w.line(indent, fence+d.MediaType)
	for _, l := range strings.Split(d.Content, "\n") {
		w.line(indent, l)
	}
	w.line(indent, fence)
}

var tableCellEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "\n", `\n`)

func (w *writer) table(indent int, t *ast.DataTable) {
	escaped := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		escaped[i] = make([]string, len(row))
		for j, cell := range row {
			escaped[i][j] = tableCellEscaper.Replace(cell)
		}
	}
	widths := columnWidths(escaped)
	for _, row := range escaped {
		var cells []string
		for i, cell := range row {
			cells = append(cells, padCell(cell, widths[i]))
		}
		w.line(indent, "| "+strings.Join(cells, " | ")+" |")
	}
}

func columnWidths(rows [][]string) []int {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func padCell(cell string, width int) string {
	if len(cell) >= width {
		return cell
	}
	return cell + strings.Repeat(" ", width-len(cell))
}

// header renders a block keyword line, trimming a trailing empty name
// rather than emitting a dangling space.
func header(keyword, name string) string {
	if name == "" {
		return keyword + ":"
	}
	return keyword + ": " + name
}
