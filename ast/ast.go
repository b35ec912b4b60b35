// Package ast defines the lossless Pass-1 AST (spec 4.D): a sum over
// {feature, background, rule, scenario, scenario_outline, examples,
// step, macro_step, tag, comment, docstring, data_table}. Every node
// carries a Location; nodes own their data by value, never referencing
// the source buffer or the token stream once built, so the AST can
// outlive the input string it was parsed from.
//
// Grounded on the discriminated Node-interface style of
// core/ast/ast.go: one interface with a Location/Kind accessor plus a
// concrete struct per alternative, rather than a single giant struct
// with optional fields.
package ast

import "github.com/SHIFT-LEFTER/shiftlefter-sub001/location"

// Kind discriminates which alternative of the AST sum a Node is.
type Kind string

const (
	KindFeature         Kind = "feature"
	KindBackground      Kind = "background"
	KindRule            Kind = "rule"
	KindScenario        Kind = "scenario"
	KindScenarioOutline Kind = "scenario_outline"
	KindExamples        Kind = "examples"
	KindStep            Kind = "step"
	KindMacroStep       Kind = "macro_step"
	KindTag             Kind = "tag"
	KindComment         Kind = "comment"
	KindDocstring       Kind = "docstring"
	KindDataTable       Kind = "data_table"
)

// Node is any member of the AST sum type.
type Node interface {
	Kind() Kind
	Location() location.Location
}

// Tag is a single `@name` annotation on a scenario, outline, rule,
// feature, or examples block. Duplicates are preserved at this level;
// deduplication is a pickler concern (spec 4.E tag inheritance).
type Tag struct {
	Name string
	Loc  location.Location
}

func (t Tag) Kind() Kind                   { return KindTag }
func (t Tag) Location() location.Location  { return t.Loc }

// Comment is a free-standing `#` line retained purely for lossless
// roundtripping; it carries no semantic weight elsewhere in the
// pipeline.
type Comment struct {
	Text string
	Loc  location.Location
}

func (c Comment) Kind() Kind                  { return KindComment }
func (c Comment) Location() location.Location { return c.Loc }

// Docstring is a fenced multi-line step argument.
type Docstring struct {
	Fence     string // `"""` or "```"
	MediaType string
	Content   string
	Loc       location.Location
}

func (d Docstring) Kind() Kind                  { return KindDocstring }
func (d Docstring) Location() location.Location { return d.Loc }

// DataTable is a pipe-delimited step or Examples argument. Rows[0] is
// the header row for Examples tables; for a plain step's data table
// there is no distinguished header row at the AST level.
type DataTable struct {
	Rows      [][]string
	RowLocs   []location.Location
	Loc       location.Location
}

func (d DataTable) Kind() Kind                  { return KindDataTable }
func (d DataTable) Location() location.Location { return d.Loc }

// Step is a single Given/When/Then/And/But/* line, with an optional
// docstring or data table argument (never both). IsMacroCall is true
// when the lexed text ends with the two-character SPACE-PLUS call
// suffix; Text retains the suffix unstripped until macro expansion.
type Step struct {
	Keyword     string
	Text        string
	IsMacroCall bool
	Docstring   *Docstring
	Table       *DataTable
	Loc         location.Location
}

func (s Step) Kind() Kind {
	if s.IsMacroCall {
		return KindMacroStep
	}
	return KindStep
}
func (s Step) Location() location.Location { return s.Loc }

// Descriptions are free-text lines attached to the enclosing node
// between its header and its first structural child.
type Descriptions = []string

// Background holds the steps shared by every scenario in its enclosing
// feature or rule.
type Background struct {
	Keyword      string
	Name         string
	Descriptions Descriptions
	Steps        []Step
	Loc          location.Location
}

func (b *Background) Kind() Kind                  { return KindBackground }
func (b *Background) Location() location.Location { return b.Loc }

// Scenario is a single concrete example.
type Scenario struct {
	Tags         []Tag
	Keyword      string
	Name         string
	Descriptions Descriptions
	Steps        []Step
	Loc          location.Location
}

func (s *Scenario) Kind() Kind                  { return KindScenario }
func (s *Scenario) Location() location.Location { return s.Loc }

// Examples is one Examples: block under a scenario outline.
type Examples struct {
	Tags         []Tag
	Keyword      string
	Name         string
	Descriptions Descriptions
	Table        *DataTable
	Loc          location.Location
}

func (e *Examples) Kind() Kind                  { return KindExamples }
func (e *Examples) Location() location.Location { return e.Loc }

// ScenarioOutline is a templated scenario expanded once per Examples
// row at pickle time.
type ScenarioOutline struct {
	Tags         []Tag
	Keyword      string
	Name         string
	Descriptions Descriptions
	Steps        []Step
	Examples     []Examples
	Loc          location.Location
}

func (o *ScenarioOutline) Kind() Kind                  { return KindScenarioOutline }
func (o *ScenarioOutline) Location() location.Location { return o.Loc }

// Rule groups a background and a set of scenarios/outlines under a
// shared name; its tags are inherited by every descendant pickle.
type Rule struct {
	Tags         []Tag
	Keyword      string
	Name         string
	Descriptions Descriptions
	Background   *Background
	Children     []Node // *Scenario, *ScenarioOutline, Comment
	Loc          location.Location
}

func (r *Rule) Kind() Kind                  { return KindRule }
func (r *Rule) Location() location.Location { return r.Loc }

// Feature is the AST root for one source document.
type Feature struct {
	Tags         []Tag
	Keyword      string
	Name         string
	Descriptions Descriptions
	Background   *Background
	// Children holds *Rule, *Scenario, *ScenarioOutline, and Comment
	// nodes in source order, as the grammar allows them interleaved.
	Children []Node
	Loc      location.Location
}

func (f *Feature) Kind() Kind                  { return KindFeature }
func (f *Feature) Location() location.Location { return f.Loc }

// Empty reports whether f has no header at all — the degenerate parse
// of an input containing no Feature line.
func (f *Feature) Empty() bool {
	return f == nil || (f.Name == "" && f.Keyword == "" && len(f.Children) == 0 && f.Background == nil)
}
