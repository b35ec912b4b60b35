package fuzzgherkin

import (
	"fmt"
	"time"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/token"
)

// Phase names the pipeline stage a mutation trial's outcome is
// attributed to, per spec 4.M's failure signature shape.
type Phase string

const (
	PhaseLex   Phase = "lex"
	PhaseParse Phase = "parse"
	PhaseOther Phase = "other"
)

// Outcome classifies how a mutation trial concluded.
type Outcome string

const (
	// OutcomePass means the parser returned a structured (non-panic)
	// result — zero or more collected diag.Errors — within the
	// per-check timeout. This is the only passing outcome; per spec
	// 4.M, "pass iff parser returns structured errors (not exceptions)
	// within a per-parse timeout".
	OutcomePass Outcome = "pass"
	// OutcomeTimeout means the per-check deadline elapsed before the
	// pipeline returned.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeUncaughtException means the pipeline panicked instead of
	// returning a diag.Error.
	OutcomeUncaughtException Outcome = "uncaught_exception"
)

// TrialResult is the record produced by one mutation trial.
type TrialResult struct {
	Outcome     Outcome
	Phase       Phase
	ErrorType   string // the diag.ErrType of the first collected error, when any
	ParseErrors int
	Panic       any
	Elapsed     time.Duration
}

// Failed reports whether this trial is a fuzzer failure: anything
// other than OutcomePass.
func (r TrialResult) Failed() bool {
	return r.Outcome != OutcomePass
}

// Signature summarizes a failure for dedup purposes, per spec 4.M:
// "each failure is characterized by {mutator_type, phase, error_type}.
// Only the first occurrence of each signature is saved."
type Signature struct {
	MutatorType string
	Phase       Phase
	ErrorType   string
}

// SignatureOf derives the dedup signature for a failed trial produced
// by the given mutator combination. combo is rendered "m1" for a
// single mutator or "m1+m2" for a two-mutator combo, matching spec's
// "a two-mutator combo" wording.
func SignatureOf(kinds []MutatorType, tr TrialResult) Signature {
	return Signature{MutatorType: comboLabel(kinds), Phase: tr.Phase, ErrorType: tr.ErrorType}
}

func comboLabel(kinds []MutatorType) string {
	if len(kinds) == 0 {
		return ""
	}
	s := string(kinds[0])
	for _, k := range kinds[1:] {
		s += "+" + string(k)
	}
	return s
}

// RunMutationTrial runs the lex→parse pipeline over src under a
// per-check wall-clock timeout. A panic inside the pipeline is
// recovered inside the worker goroutine and reported as
// OutcomeUncaughtException; an expired timeout abandons the goroutine
// without attempting to interrupt it — per spec §5, "the timeout
// exists to detect algorithmic regressions", not to preempt work, since
// parsers are pure and expected to return in bounded time on
// well-formed input.
func RunMutationTrial(src string, timeout time.Duration) TrialResult {
	done := make(chan TrialResult, 1)
	start := time.Now()

	go func() {
		done <- evaluateTrial(src)
	}()

	select {
	case tr := <-done:
		tr.Elapsed = time.Since(start)
		return tr
	case <-time.After(timeout):
		return TrialResult{Outcome: OutcomeTimeout, Phase: PhaseParse, ErrorType: "timeout", Elapsed: time.Since(start)}
	}
}

// evaluateTrial runs one trial synchronously; it is always called on
// its own goroutine by RunMutationTrial so a panic here never reaches
// the caller's goroutine. recover is scoped per stage so a panic's
// Phase attribution is meaningful (lex vs. parse) rather than always
// PhaseOther.
func evaluateTrial(src string) (result TrialResult) {
	var toks []token.Token
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = TrialResult{Outcome: OutcomeUncaughtException, Phase: PhaseLex, ErrorType: fmt.Sprintf("%v", r), Panic: r}
			}
		}()
		lx := lexer.New(dialect.Default())
		toks = lx.Lex(src) // lexing is total per spec 4.C: never fails on malformed input, but a bug here would panic
	}()
	if result.Outcome == OutcomeUncaughtException {
		return result
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result = TrialResult{Outcome: OutcomeUncaughtException, Phase: PhaseParse, ErrorType: fmt.Sprintf("%v", r), Panic: r}
			}
		}()
		res := parser.Parse(toks)
		result = TrialResult{Outcome: OutcomePass, Phase: PhaseParse, ParseErrors: len(res.Errors)}
		if len(res.Errors) > 0 {
			result.ErrorType = string(res.Errors[0].Type)
		}
	}()
	return result
}

func (r TrialResult) String() string {
	if r.Panic != nil {
		return fmt.Sprintf("%s phase=%s panic=%v", r.Outcome, r.Phase, r.Panic)
	}
	return fmt.Sprintf("%s phase=%s errorType=%s parseErrors=%d elapsed=%s",
		r.Outcome, r.Phase, r.ErrorType, r.ParseErrors, r.Elapsed)
}
