// Package binder matches pickle steps against registered stepdefs
// (spec 4.H): full-string regex matching, arity validation, and
// optional subject/verb/object/interface (SVOI) glossary validation.
//
// Matching is generalized from other_examples/.../gobdd.go's
// findStepDef, which silently picks the "best" of several matching
// patterns by submatch count. This binder instead treats any
// multi-match as ambiguous and reports every candidate — true
// ambiguity detection rather than best-match disambiguation — per the
// spec's explicit matched/undefined/ambiguous trichotomy.
// Undefined-step suggestions use fuzzysearch, the same ranked-match
// library runtime/planner/planner.go uses for its own "did you mean"
// diagnostics.
package binder

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/stepdef"
)

// Status is the outcome of matching one pickle step against the
// registered stepdefs.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusUndefined  Status = "undefined"
	StatusAmbiguous  Status = "ambiguous"
	StatusSynthetic  Status = "synthetic"
)

// Candidate names one stepdef that matched an ambiguous step.
type Candidate struct {
	RegistrationID string
	PatternSrc     string
}

// SVOI is the extracted subject/verb/object/interface tuple for a
// matched step whose stepdef carries `metadata.svo`.
type SVOI struct {
	Subject   string
	Verb      string
	Object    string
	Interface string
}

// BoundStep is one pickle step after binding.
type BoundStep struct {
	Step           pickle.Step
	Status         Status
	RegistrationID string
	Captures       []*string
	Candidates     []Candidate
	ArityExpected  []int
	ArityActual    int
	ArityValid     bool
	SVOI           *SVOI
	SVOBlocked     bool
}

// BoundPickle is one pickle with every step bound.
type BoundPickle struct {
	Pickle *pickle.Pickle
	Steps  []BoundStep
}

// Runnable reports this pickle's own run-plan runnability (spec §3 "Run
// plan"): every step matched with valid arity or synthetic, and no step
// carries a blocking SVO issue. This is the per-pickle counterpart to
// Result.Runnable, which additionally folds in cross-pickle diagnostics
// (e.g. a sibling pickle's ambiguous step does not, by itself, make this
// one unrunnable).
func (bp *BoundPickle) Runnable() bool {
	for _, s := range bp.Steps {
		switch s.Status {
		case StatusSynthetic:
			continue
		case StatusMatched:
			if !s.ArityValid || s.SVOBlocked {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Glossary is the vocabulary SVO validation checks matched steps
// against.
type Glossary struct {
	Subjects             map[string]bool
	VerbsByInterfaceType map[string]map[string]bool
}

// InterfaceDef names one configured interface adapter.
type InterfaceDef struct {
	Type    string
	Adapter string
	Config  map[string]any
}

// Enforcement is how strictly an SVO check is applied.
type Enforcement string

const (
	Warn  Enforcement = "warn"
	Error Enforcement = "error"
)

// EnforcementLevels configures how each SVO check class is enforced.
type EnforcementLevels struct {
	UnknownSubject   Enforcement
	UnknownVerb      Enforcement
	UnknownInterface Enforcement
}

// ValidationOptions activates SVO validation when non-nil.
type ValidationOptions struct {
	Glossary    *Glossary
	Interfaces  map[string]InterfaceDef
	Enforcement EnforcementLevels
}

// Result is the binder's full output.
type Result struct {
	Plans       []*BoundPickle
	Runnable    bool
	Diagnostics diag.Diagnostics
}

// Bind matches every step of every pickle against snapshot (a
// registry snapshot taken once by the caller, per the concurrency
// model in spec §5) and, when opts is non-nil, validates SVOI.
func Bind(pickles []*pickle.Pickle, snapshot []*stepdef.Registration, opts *ValidationOptions) *Result {
	var d diag.Diagnostics
	var plans []*BoundPickle
	blockingSVO := false

	patternPool := make([]string, len(snapshot))
	for i, r := range snapshot {
		patternPool[i] = r.PatternSrc
	}

	for _, pk := range pickles {
		bp := &BoundPickle{Pickle: pk}
		for _, step := range pk.Steps {
			if step.Synthetic && step.MacroRole == "call" {
				bp.Steps = append(bp.Steps, BoundStep{Step: step, Status: StatusSynthetic})
				continue
			}
			bound := matchStep(step, snapshot, patternPool, &d)
			if bound.Status == StatusMatched && opts != nil {
				bound.SVOI = extractSVOI(bound, snapshot)
				if bound.SVOI != nil {
					blocked := validateSVOI(step.Loc, *bound.SVOI, opts, &d)
					if blocked {
						blockingSVO = true
						bound.SVOBlocked = true
					}
				}
			}
			bp.Steps = append(bp.Steps, bound)
		}
		plans = append(plans, bp)
	}

	return &Result{
		Plans:       plans,
		Runnable:    !d.HasBlockingErrors() && !blockingSVO,
		Diagnostics: d,
	}
}

func matchStep(step pickle.Step, snapshot []*stepdef.Registration, patternPool []string, d *diag.Diagnostics) BoundStep {
	var matches []*stepdef.Registration
	for _, r := range snapshot {
		if fullMatch(r, step.Text) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		e := diag.New(diag.StepUndefined, step.Loc, "no step definition matches: "+step.Text,
			map[string]any{"text": step.Text, "suggestions": suggest(step.Text, patternPool)})
		d.Undefined = append(d.Undefined, e)
		return BoundStep{Step: step, Status: StatusUndefined}

	case 1:
		r := matches[0]
		captures := extractCaptures(r, step.Text)
		arityExpected := []int{len(captures), len(captures) + 1}
		arityValid := r.Arity == arityExpected[0] || r.Arity == arityExpected[1]
		if !arityValid {
			d.InvalidArity = append(d.InvalidArity, diag.New(diag.StepInvalidArity, step.Loc,
				"step function arity does not match captures",
				map[string]any{"expected": arityExpected, "actual": r.Arity, "pattern": r.PatternSrc}))
		}
		return BoundStep{
			Step: step, Status: StatusMatched, RegistrationID: r.ID,
			Captures: captures, ArityExpected: arityExpected, ArityActual: r.Arity, ArityValid: arityValid,
		}

	default:
		var candidates []Candidate
		for _, r := range matches {
			candidates = append(candidates, Candidate{RegistrationID: r.ID, PatternSrc: r.PatternSrc})
		}
		e := diag.New(diag.StepAmbiguous, step.Loc, "multiple step definitions match: "+step.Text,
			map[string]any{"text": step.Text, "candidates": candidates})
		d.Ambiguous = append(d.Ambiguous, e)
		return BoundStep{Step: step, Status: StatusAmbiguous, Candidates: candidates}
	}
}

// fullMatch reports whether r's pattern matches the entire text, not
// merely a substring of it.
func fullMatch(r *stepdef.Registration, text string) bool {
	loc := r.Pattern.FindStringSubmatchIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// extractCaptures returns one entry per capture group; a group that
// did not participate in the match (e.g. inside an unmatched
// alternation) is nil rather than an empty string.
func extractCaptures(r *stepdef.Registration, text string) []*string {
	idx := r.Pattern.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil
	}
	groups := (len(idx) / 2) - 1
	captures := make([]*string, groups)
	for i := 0; i < groups; i++ {
		start, end := idx[2*(i+1)], idx[2*(i+1)+1]
		if start < 0 || end < 0 {
			continue
		}
		s := text[start:end]
		captures[i] = &s
	}
	return captures
}

func suggest(text string, pool []string) []string {
	if len(pool) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(text, pool)
	sort.Sort(ranks)
	limit := 3
	if len(ranks) < limit {
		limit = len(ranks)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = ranks[i].Target
	}
	return out
}

func extractSVOI(bound BoundStep, snapshot []*stepdef.Registration) *SVOI {
	var reg *stepdef.Registration
	for _, r := range snapshot {
		if r.ID == bound.RegistrationID {
			reg = r
			break
		}
	}
	if reg == nil || reg.Metadata == nil {
		return nil
	}
	svoRaw, ok := reg.Metadata["svo"]
	if !ok {
		return nil
	}
	svo, ok := svoRaw.(map[string]any)
	if !ok {
		return nil
	}

	resolve := func(key string, symbolize bool) string {
		v, _ := svo[key].(string)
		if idx, ok := placeholderIndex(v); ok {
			if idx-1 < 0 || idx-1 >= len(bound.Captures) || bound.Captures[idx-1] == nil {
				return ""
			}
			val := *bound.Captures[idx-1]
			if symbolize {
				return symbolizeActor(val)
			}
			return val
		}
		return v
	}

	svoi := &SVOI{
		Subject: resolve("subject", true),
		Verb:    resolve("verb", false),
		Object:  resolve("object", false),
	}
	if iface, ok := reg.Metadata["interface"].(string); ok {
		svoi.Interface = iface
	}
	return svoi
}

// placeholderIndex parses a "$N" placeholder reference.
func placeholderIndex(v string) (int, bool) {
	if !strings.HasPrefix(v, "$") || len(v) < 2 {
		return 0, false
	}
	n := 0
	for _, c := range v[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// symbolizeActor lowercases v and collapses runs of non-alphanumeric
// characters to a single '-', yielding a stable subject symbol.
func symbolizeActor(v string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func validateSVOI(loc location.Location, svoi SVOI, opts *ValidationOptions, d *diag.Diagnostics) (blocking bool) {
	if opts.Glossary != nil {
		if !opts.Glossary.Subjects[svoi.Subject] {
			blocking = recordSVO(d, diag.SVOUnknownSubject, loc, "unknown subject: "+svoi.Subject,
				svoi.Subject, opts.Enforcement.UnknownSubject) || blocking
		}
		verbs := opts.Glossary.VerbsByInterfaceType[svoi.Interface]
		if !verbs[svoi.Verb] {
			blocking = recordSVO(d, diag.SVOUnknownVerb, loc, "unknown verb: "+svoi.Verb,
				svoi.Verb, opts.Enforcement.UnknownVerb) || blocking
		}
	}
	if _, ok := opts.Interfaces[svoi.Interface]; !ok {
		blocking = recordSVO(d, diag.SVOUnknownInterface, loc, "unknown interface: "+svoi.Interface,
			svoi.Interface, opts.Enforcement.UnknownInterface) || blocking
	}
	return blocking
}

func recordSVO(d *diag.Diagnostics, t diag.ErrType, loc location.Location, msg, symbol string, level Enforcement) bool {
	e := diag.New(t, loc, msg, map[string]any{"symbol": symbol, "enforcement": string(level)})
	d.SVOIssues = append(d.SVOIssues, e)
	return level == Error
}
