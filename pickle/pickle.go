// Package pickle flattens a parsed Feature into an executable list of
// pickles (spec 4.E): background injection, tag inheritance and
// dedup, and scenario-outline row expansion with placeholder
// substitution.
//
// Extraction runs in two phases mirroring the spec's split: Extract
// walks the AST into identity-free ScenarioPlans, and Materialize
// assigns opaque pickle IDs and performs outline row expansion. This
// split exists so a future caller can inspect/transform plans (e.g. to
// filter by tag) before paying for ID assignment — the same two-step
// shape gobdd uses internally (collect outline steps, then build the
// concrete per-row step list) generalized to a named phase boundary.
package pickle

import (
	"sort"
	"strings"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/ast"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/idhash"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
)

// Origin identifies where a pickle step's text came from.
type Origin string

const (
	OriginScenario         Origin = "scenario"
	OriginFeatureBackground Origin = "feature_background"
	OriginRuleBackground    Origin = "rule_background"
)

// StepPlan is one pre-identity step, tagged with its origin.
type StepPlan struct {
	Keyword   string
	Text      string
	Origin    Origin
	Docstring *ast.Docstring
	Table     *ast.DataTable
	Loc       location.Location
}

// ExamplesPlan is one Examples: block feeding an outline.
type ExamplesPlan struct {
	Tags    []string
	Header  []string
	Rows    [][]string
	RowLocs []location.Location
}

// OutlinePlan marks a ScenarioPlan as outline-derived.
type OutlinePlan struct {
	Examples []ExamplesPlan
}

// ScenarioPlan is one feature- or rule-level scenario (or outline)
// before pickle IDs are assigned.
type ScenarioPlan struct {
	FeatureName string
	Name        string
	Tags        []string
	Steps       []StepPlan
	Loc         location.Location
	Outline     *OutlinePlan
}

// StepDocstring is a materialized, already-substituted docstring.
type StepDocstring struct {
	MediaType string
	Content   string
}

// StepTable is a materialized, already-substituted data table.
type StepTable struct {
	Rows [][]string
}

// MacroUse summarizes one macro call site on a pickle, in first-use
// order (spec 4.F "pickle-level summary"). It is populated by the
// macro package, not by this one, but lives here since it hangs off
// Pickle.
type MacroUse struct {
	Key       string
	StepCount int
	CallSite  location.Location
	Definition MacroDefRef
}

// MacroDefRef names where a macro was defined.
type MacroDefRef struct {
	File string
	Loc  location.Location
}

// Step is one materialized pickle step.
type Step struct {
	ID        string
	Keyword   string
	Text      string
	Origin    Origin
	Docstring *StepDocstring
	Table     *StepTable
	Loc       location.Location

	// TemplateText is the pre-substitution step text, set only when this
	// step belongs to an outline-derived pickle (spec §3
	// "pickle_step.template_text?"); it preserves the original "<name>"
	// placeholders Text has already had substituted into it.
	TemplateText string

	// Macro fields are zero-valued until the macro package expands a
	// call step; Synthetic distinguishes the call wrapper from its
	// expanded children.
	Synthetic      bool
	MacroRole      string // "", "call", "expanded"
	MacroKey       string
	MacroIndex     int
	CallSite       *location.Location
	Definition     *MacroDefRef
	DefinitionStep *MacroDefRef
}

// Pickle is one fully flattened, independently executable scenario
// instance.
type Pickle struct {
	ID          string
	FeatureName string
	Name        string
	Tags        []string
	Steps       []Step
	ScenarioLoc location.Location
	RowLoc      *location.Location
	Macros      []MacroUse

	// TemplateName, RowIndex, and RowValues are set only for pickles
	// materialized from a scenario outline row (spec §3: "only for
	// outline rows"), mirroring RowLoc's presence as the outline-ness
	// signal. TemplateName is the outline's pre-substitution name;
	// RowIndex is this row's position within its Examples table;
	// RowValues maps each header cell's text to this row's cell text.
	TemplateName string
	RowIndex     int
	RowValues    map[string]string
}

// Extract walks f into ScenarioPlans, applying tag inheritance and
// background injection but assigning no identity yet.
func Extract(f *ast.Feature) []*ScenarioPlan {
	if f.Empty() {
		return nil
	}
	var plans []*ScenarioPlan
	for _, child := range f.Children {
		switch n := child.(type) {
		case *ast.Scenario:
			plans = append(plans, planScenario(f.Name, f.Tags, nil, f.Background, nil, n))
		case *ast.ScenarioOutline:
			plans = append(plans, planOutline(f.Name, f.Tags, nil, f.Background, nil, n))
		case *ast.Rule:
			for _, rc := range n.Children {
				switch rn := rc.(type) {
				case *ast.Scenario:
					plans = append(plans, planScenario(f.Name, f.Tags, n.Tags, f.Background, n.Background, rn))
				case *ast.ScenarioOutline:
					plans = append(plans, planOutline(f.Name, f.Tags, n.Tags, f.Background, n.Background, rn))
				}
			}
		}
	}
	return plans
}

func planScenario(featureName string, featureTags, ruleTags []ast.Tag, featureBg, ruleBg *ast.Background, s *ast.Scenario) *ScenarioPlan {
	return &ScenarioPlan{
		FeatureName: featureName,
		Name:        s.Name,
		Tags:        dedupeTagNames(featureTags, ruleTags, s.Tags, nil),
		Steps:       buildStepPlans(featureBg, ruleBg, s.Steps),
		Loc:         s.Loc,
	}
}

func planOutline(featureName string, featureTags, ruleTags []ast.Tag, featureBg, ruleBg *ast.Background, o *ast.ScenarioOutline) *ScenarioPlan {
	plan := &ScenarioPlan{
		FeatureName: featureName,
		Name:        o.Name,
		Steps:       buildStepPlans(featureBg, ruleBg, o.Steps),
		Loc:         o.Loc,
		Tags:        dedupeTagNames(featureTags, ruleTags, o.Tags, nil),
	}

	outline := &OutlinePlan{}
	for _, ex := range o.Examples {
		ep := ExamplesPlan{Tags: tagNames(ex.Tags)}
		if ex.Table != nil && len(ex.Table.Rows) > 0 {
			ep.Header = ex.Table.Rows[0]
			ep.Rows = ex.Table.Rows[1:]
			if len(ex.Table.RowLocs) > 0 {
				ep.RowLocs = ex.Table.RowLocs[1:]
			}
		}
		outline.Examples = append(outline.Examples, ep)
	}
	plan.Outline = outline
	return plan
}

func buildStepPlans(featureBg *ast.Background, ruleBg *ast.Background, steps []ast.Step) []StepPlan {
	if len(steps) == 0 {
		return nil
	}
	var out []StepPlan
	if featureBg != nil {
		for _, s := range featureBg.Steps {
			out = append(out, stepPlanOf(s, OriginFeatureBackground))
		}
	}
	if ruleBg != nil {
		for _, s := range ruleBg.Steps {
			out = append(out, stepPlanOf(s, OriginRuleBackground))
		}
	}
	for _, s := range steps {
		out = append(out, stepPlanOf(s, OriginScenario))
	}
	return out
}

func stepPlanOf(s ast.Step, origin Origin) StepPlan {
	return StepPlan{
		Keyword: s.Keyword, Text: s.Text, Origin: origin,
		Docstring: s.Docstring, Table: s.Table, Loc: s.Loc,
	}
}

func tagNames(tags []ast.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// dedupeTagNames concatenates tag groups in priority order and
// deduplicates by name, keeping the first occurrence (spec 4.E tag
// inheritance order: feature ++ rule ++ scenario ++ examples).
func dedupeTagNames(groups ...[]ast.Tag) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range groups {
		for _, t := range g {
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		}
	}
	return out
}

func dedupeNameStrings(groups ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range groups {
		for _, n := range g {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Materialize assigns opaque IDs to every plan, expanding scenario
// outlines into one pickle per Examples body row. Plans with no
// Examples rows (a bare outline with "Examples:" but zero data rows,
// or no Examples block at all) fall back to a single plain pickle.
func Materialize(plans []*ScenarioPlan) []*Pickle {
	var pickles []*Pickle
	for _, p := range plans {
		if p.Outline == nil || !hasAnyRows(p.Outline) {
			pickles = append(pickles, materializePlain(p))
			continue
		}
		pickles = append(pickles, materializeOutline(p)...)
	}
	return pickles
}

func hasAnyRows(o *OutlinePlan) bool {
	for _, ex := range o.Examples {
		if len(ex.Rows) > 0 {
			return true
		}
	}
	return false
}

func materializePlain(p *ScenarioPlan) *Pickle {
	pk := &Pickle{
		FeatureName: p.FeatureName,
		Name:        p.Name,
		Tags:        p.Tags,
		ScenarioLoc: p.Loc,
	}
	pk.Steps = materializeSteps(p.Steps, nil)
	pk.ID = idhash.ID("pkl", p.FeatureName, p.Name, p.Loc.String())
	return pk
}

func materializeOutline(p *ScenarioPlan) []*Pickle {
	var out []*Pickle
	for _, ex := range p.Outline.Examples {
		for ri, row := range ex.Rows {
			values := map[string]string{}
			for ci, h := range ex.Header {
				if ci < len(row) {
					values[h] = row[ci]
				}
			}
			name := substitute(p.Name, values)
			tags := dedupeNameStrings(p.Tags, ex.Tags)
			loc := p.Loc
			var rowLoc *location.Location
			if ri < len(ex.RowLocs) {
				rl := ex.RowLocs[ri]
				rowLoc = &rl
			}

			pk := &Pickle{
				FeatureName:  p.FeatureName,
				Name:         name,
				Tags:         tags,
				ScenarioLoc:  loc,
				RowLoc:       rowLoc,
				TemplateName: p.Name,
				RowIndex:     ri,
				RowValues:    values,
			}
			pk.Steps = materializeSteps(p.Steps, values)
			rowLocStr := ""
			if rowLoc != nil {
				rowLocStr = rowLoc.String()
			}
			pk.ID = idhash.ID("pkl", p.FeatureName, p.Name, loc.String(), rowLocStr)
			out = append(out, pk)
		}
	}
	return out
}

func materializeSteps(plans []StepPlan, values map[string]string) []Step {
	steps := make([]Step, 0, len(plans))
	for _, sp := range plans {
		text := sp.Text
		templateText := ""
		if values != nil {
			templateText = sp.Text
			text = substitute(text, values)
		}
		step := Step{
			Keyword: sp.Keyword, Text: text, TemplateText: templateText, Origin: sp.Origin, Loc: sp.Loc,
		}
		if sp.Docstring != nil {
			content := sp.Docstring.Content
			mediaType := sp.Docstring.MediaType
			if values != nil {
				content = substitute(content, values)
				mediaType = substitute(mediaType, values)
			}
			step.Docstring = &StepDocstring{MediaType: mediaType, Content: content}
		}
		if sp.Table != nil {
			rows := make([][]string, len(sp.Table.Rows))
			for i, row := range sp.Table.Rows {
				cells := make([]string, len(row))
				for j, c := range row {
					if values != nil {
						c = substitute(c, values)
					}
					cells[j] = c
				}
				rows[i] = cells
			}
			step.Table = &StepTable{Rows: rows}
		}
		step.ID = idhash.ID("pst", string(sp.Origin), text, sp.Loc.String())
		steps = append(steps, step)
	}
	return steps
}

// substitute replaces every "<name>" placeholder with its row value.
// Longer names are substituted first so one header name that is a
// substring of another ("<x>" vs "<xy>") never partially clobbers it.
func substitute(s string, values map[string]string) string {
	if len(values) == 0 {
		return s
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, n := range names {
		s = strings.ReplaceAll(s, "<"+n+">", values[n])
	}
	return s
}
