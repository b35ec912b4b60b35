package fuzzgherkin

import (
	"fmt"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/printer"
)

// ValidationReport carries the outcome of checking the four invariants
// spec 4.M's valid-generation mode requires against one generated case.
type ValidationReport struct {
	ParseErrors           int
	RoundtripOK           bool
	PickleCount           int
	CanonicalSkipped      bool // true when the case contains a Rule (spec's "unless rules")
	CanonicalOK           bool
	CanonicalIdempotentOK bool
	Panic                 any
}

// OK reports whether every invariant this report checked held.
func (r ValidationReport) OK() bool {
	if r.Panic != nil {
		return false
	}
	if r.ParseErrors != 0 || !r.RoundtripOK {
		return false
	}
	if !r.CanonicalSkipped && (!r.CanonicalOK || !r.CanonicalIdempotentOK) {
		return false
	}
	return true
}

// Validate runs the four per-trial checks spec 4.M's "Valid generation"
// mode requires: parse succeeds with zero errors, pickling succeeds,
// print_tokens(lex(x)) == x, and canonical(x) exists and is idempotent
// (skipped when c.HasRule, per spec's explicit carve-out). Any panic
// surfacing from the pipeline is recovered and reported rather than
// propagated, since a generator/pipeline panic is itself the kind of
// regression this harness exists to catch.
func Validate(c Case) (report ValidationReport) {
	defer func() {
		if r := recover(); r != nil {
			report.Panic = r
		}
	}()

	lx := lexer.New(dialect.Default())
	toks := lx.Lex(c.Source)

	if printer.Lossless(toks) != c.Source {
		report.RoundtripOK = false
	} else {
		report.RoundtripOK = true
	}

	res := parser.Parse(toks)
	report.ParseErrors = len(res.Errors)
	if report.ParseErrors != 0 {
		return report
	}

	plans := pickle.Extract(res.Feature)
	pickles := pickle.Materialize(plans)
	report.PickleCount = len(pickles)

	if c.HasRule {
		report.CanonicalSkipped = true
		return report
	}

	out1, cerr := printer.Canonical(res.Feature)
	if cerr != nil {
		report.CanonicalOK = false
		return report
	}
	report.CanonicalOK = true

	reparsed := parser.Parse(lx.Lex(out1))
	out2, cerr2 := printer.Canonical(reparsed.Feature)
	report.CanonicalIdempotentOK = cerr2 == nil && out1 == out2
	return report
}

// String renders a human-readable failure summary for diagnostics.
func (r ValidationReport) String() string {
	if r.Panic != nil {
		return fmt.Sprintf("panic: %v", r.Panic)
	}
	return fmt.Sprintf("parseErrors=%d roundtrip=%v canonicalSkipped=%v canonicalOK=%v idempotentOK=%v pickles=%d",
		r.ParseErrors, r.RoundtripOK, r.CanonicalSkipped, r.CanonicalOK, r.CanonicalIdempotentOK, r.PickleCount)
}
