// Package executor drives compiled plans (spec 4.J): fail-fast
// scenario execution over bound pickle steps, synthetic macro-wrapper
// rollup, and suite-level aggregation.
//
// Grounded on the reflect-based invocation style of
// other_examples/.../gobdd.go's stepDef.run (build reflect.Value args
// from captures plus an optional context, recover-wrap panics) combined
// with the Context-threading and per-step cancellation idiom of
// runtime/decorators/timeout.go's context.WithTimeout wrapper, adapted
// from a command-execution timeout to a per-step one. Per spec §5, a
// timed-out step's goroutine is abandoned, never killed.
package executor

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/binder"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/stepdef"
)

// Status is a step or scenario's terminal execution state.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
)

// rank orders Status by rollup precedence (spec invariant 9):
// failed > pending > skipped > passed.
func rank(s Status) int {
	switch s {
	case StatusFailed:
		return 3
	case StatusPending:
		return 2
	case StatusSkipped:
		return 1
	default:
		return 0
	}
}

// rollup folds a set of statuses using the spec's precedence: the
// worst-ranked status wins; an empty set rolls up to passed.
func rollup(statuses ...Status) Status {
	best := StatusPassed
	for _, s := range statuses {
		if rank(s) > rank(best) {
			best = s
		}
	}
	return best
}

// pendingSentinel is the distinguished return value meaning "this step
// intentionally has no implementation yet" (spec 4.J step-outcome sum
// type; design note §9 "explicit sum type").
type pendingSentinel struct{}

// Pending is the sentinel a step function returns to mark itself as
// not-yet-implemented.
var Pending = pendingSentinel{}

// Outcome is the explicit step-outcome sum type from design note §9,
// replacing the dynamic "map merges, nil ignored, pending sentinel,
// anything else error" convention with typed variants. Step functions
// may return one of these directly, or the legacy shapes (map, nil,
// Pending, anything else) which interpretReturn adapts into the same
// variants.
type Outcome struct {
	kind    outcomeKind
	data    map[string]any
	invalid string
}

type outcomeKind int

const (
	outcomeUnchanged outcomeKind = iota
	outcomeReplace
	outcomeMerge
	outcomePending
	outcomeInvalid
)

// Replace returns an Outcome that replaces scenario state wholesale.
func Replace(state map[string]any) Outcome { return Outcome{kind: outcomeReplace, data: state} }

// Merge returns an Outcome that merges state into the existing scenario map.
func Merge(state map[string]any) Outcome { return Outcome{kind: outcomeMerge, data: state} }

// Unchanged leaves scenario state untouched.
var Unchanged = Outcome{kind: outcomeUnchanged}

// PendingOutcome marks the step pending.
var PendingOutcome = Outcome{kind: outcomePending}

// Invalid marks a step's return value as unrecognized (step/invalid_return).
func Invalid(reason string) Outcome { return Outcome{kind: outcomeInvalid, invalid: reason} }

// Context is the execution context threaded into step functions
// declared with arity C+1 (spec 4.H/4.J).
type Context struct {
	Step     pickle.Step
	Scenario map[string]any
}

// StepTimeout bounds how long a single step invocation may run before
// the executor gives up on it and records step/timeout (spec §5). Zero
// means no timeout.
type Options struct {
	StepTimeout time.Duration
	Logger      *slog.Logger

	// Parallelism bounds how many scenarios RunSuite runs concurrently.
	// <= 1 (the default) runs scenarios sequentially. When > 1, RunSuite
	// dispatches scenarios onto a bounded worker pool but buffers
	// results back into original pickle order before returning, so
	// suite reporting stays deterministic regardless of scheduling
	// (spec §9 design note on parallel execution).
	Parallelism int
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// StepResult is one executed (or skipped) step's outcome.
type StepResult struct {
	Bound    binder.BoundStep
	Status   Status
	Error    *diag.Error
	Duration time.Duration
}

// ScenarioResult is one pickle's full run.
type ScenarioResult struct {
	Pickle *pickle.Pickle
	Steps  []StepResult
	Status Status
}

// Counts summarizes a suite run.
type Counts struct {
	Passed  int
	Failed  int
	Pending int
	Skipped int
}

// SuiteResult is the aggregate outcome of running every plan.
type SuiteResult struct {
	Scenarios []ScenarioResult
	Counts    Counts
	Status    Status
}

// index maps registration ID to the Registration it came from, built
// once per Run/RunSuite call from the same snapshot the binder used.
type index map[string]*stepdef.Registration

func buildIndex(snapshot []*stepdef.Registration) index {
	m := make(index, len(snapshot))
	for _, r := range snapshot {
		m[r.ID] = r
	}
	return m
}

// RunSuite executes every bound plan in order, continuing after failed
// scenarios (spec 4.J "Suite execution"). Each plan's own
// BoundPickle.Runnable() gates it independently: a sibling pickle's
// ambiguous or SVO-blocked step does not, by itself, skip this one
// (spec §3 "Run plan" is per-pickle). Callers that want an all-or-
// nothing gate (e.g. a hard compiler-level abort where Plans is empty)
// get that for free, since there is then nothing to iterate.
func RunSuite(plans []*binder.BoundPickle, snapshot []*stepdef.Registration, opts Options) *SuiteResult {
	idx := buildIndex(snapshot)
	suite := &SuiteResult{Scenarios: make([]ScenarioResult, len(plans))}

	run := func(i int) ScenarioResult {
		if !plans[i].Runnable() {
			return skipScenario(plans[i])
		}
		return RunScenario(plans[i], idx, opts)
	}

	if opts.Parallelism <= 1 || len(plans) <= 1 {
		for i := range plans {
			suite.Scenarios[i] = run(i)
		}
	} else {
		runParallel(plans, opts.Parallelism, suite.Scenarios, run)
	}

	for _, sr := range suite.Scenarios {
		tally(&suite.Counts, sr.Status)
	}
	suite.Status = suiteRollup(suite.Counts)
	opts.logger().Info("suite finished", "scenarios", len(suite.Scenarios), "status", suite.Status)
	return suite
}

// runParallel dispatches indices 0..len(slots)-1 onto a bounded worker
// pool of size parallelism, writing each result directly into its
// original slot so ordering is preserved regardless of completion
// order.
func runParallel(plans []*binder.BoundPickle, parallelism int, slots []ScenarioResult, run func(int) ScenarioResult) {
	if parallelism > len(plans) {
		parallelism = len(plans)
	}
	work := make(chan int)
	var wg sync.WaitGroup
	wg.Add(parallelism)
	for w := 0; w < parallelism; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				slots[i] = run(i)
			}
		}()
	}
	for i := range plans {
		work <- i
	}
	close(work)
	wg.Wait()
}

func tally(c *Counts, s Status) {
	switch s {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusPending:
		c.Pending++
	case StatusSkipped:
		c.Skipped++
	}
}

func suiteRollup(c Counts) Status {
	switch {
	case c.Failed > 0:
		return StatusFailed
	case c.Pending > 0:
		return StatusPending
	case c.Skipped > 0 || c.Passed == 0:
		return StatusSkipped
	default:
		return StatusPassed
	}
}

func skipScenario(bp *binder.BoundPickle) ScenarioResult {
	sr := ScenarioResult{Pickle: bp.Pickle, Status: StatusSkipped}
	for _, s := range bp.Steps {
		sr.Steps = append(sr.Steps, StepResult{Bound: s, Status: StatusSkipped})
	}
	return sr
}

// RunScenario executes one bound pickle's steps in order, fail-fast on
// failed/pending/undefined (spec 4.J "Scenario execution"), rolling up
// contiguous macro-expanded children into their synthetic wrapper's
// status (spec 4.J "Synthetic wrappers").
func RunScenario(bp *binder.BoundPickle, idx index, opts Options) ScenarioResult {
	sr := ScenarioResult{Pickle: bp.Pickle}
	scenario := map[string]any{}
	failing := false

	steps := bp.Steps
	for i := 0; i < len(steps); {
		bound := steps[i]

		if bound.Status == binder.StatusSynthetic {
			children, next := collectMacroChildren(steps, i, bound.Step.MacroKey)
			var childResults []StepResult
			for _, child := range children {
				res := runOrSkip(child, idx, &scenario, failing, opts)
				childResults = append(childResults, res)
				if res.Status == StatusFailed || res.Status == StatusPending {
					failing = true
				}
			}
			wrapperStatus := rollup(statusesOf(childResults)...)
			sr.Steps = append(sr.Steps, StepResult{Bound: bound, Status: wrapperStatus})
			sr.Steps = append(sr.Steps, childResults...)
			i = next
			continue
		}

		res := runOrSkip(bound, idx, &scenario, failing, opts)
		sr.Steps = append(sr.Steps, res)
		if res.Status == StatusFailed || res.Status == StatusPending {
			failing = true
		}
		i++
	}

	sr.Status = rollup(statusesOf(sr.Steps)...)
	return sr
}

func statusesOf(results []StepResult) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

// collectMacroChildren returns the contiguous run of expanded steps
// belonging to the wrapper at steps[wrapperIdx], plus the index just
// past them.
func collectMacroChildren(steps []binder.BoundStep, wrapperIdx int, key string) ([]binder.BoundStep, int) {
	i := wrapperIdx + 1
	var children []binder.BoundStep
	for i < len(steps) {
		s := steps[i].Step
		if s.MacroRole != "expanded" || s.MacroKey != key {
			break
		}
		children = append(children, steps[i])
		i++
	}
	return children, i
}

func runOrSkip(bound binder.BoundStep, idx index, scenario *map[string]any, failing bool, opts Options) StepResult {
	if failing {
		return StepResult{Bound: bound, Status: StatusSkipped}
	}
	switch bound.Status {
	case binder.StatusUndefined:
		return StepResult{Bound: bound, Status: StatusFailed,
			Error: diag.New(diag.StepUndefined, bound.Step.Loc, "undefined step", nil)}
	case binder.StatusAmbiguous:
		return StepResult{Bound: bound, Status: StatusFailed,
			Error: diag.New(diag.StepAmbiguous, bound.Step.Loc, "ambiguous step", nil)}
	case binder.StatusSynthetic:
		return StepResult{Bound: bound, Status: StatusPassed}
	}
	return invokeStep(bound, idx, scenario, opts)
}

func invokeStep(bound binder.BoundStep, idx index, scenario *map[string]any, opts Options) StepResult {
	reg, ok := idx[bound.RegistrationID]
	if !ok {
		return StepResult{Bound: bound, Status: StatusFailed,
			Error: diag.New(diag.StepUndefined, bound.Step.Loc, "registration missing from snapshot", nil)}
	}

	start := time.Now()
	outcome, derr := call(reg, bound, *scenario, opts)
	dur := time.Since(start)

	if derr != nil {
		return StepResult{Bound: bound, Status: StatusFailed, Error: derr, Duration: dur}
	}

	switch outcome.kind {
	case outcomeReplace:
		*scenario = outcome.data
	case outcomeMerge:
		for k, v := range outcome.data {
			(*scenario)[k] = v
		}
	case outcomePending:
		return StepResult{Bound: bound, Status: StatusPending, Duration: dur}
	case outcomeInvalid:
		return StepResult{Bound: bound, Status: StatusFailed, Duration: dur,
			Error: diag.New(diag.StepInvalidReturn, bound.Step.Loc, "invalid step return value: "+outcome.invalid, nil)}
	}
	return StepResult{Bound: bound, Status: StatusPassed, Duration: dur}
}

// call invokes reg.Fn reflectively with bound's captures (dereferenced
// or passed as *string to match the function's declared parameter
// types) and, if the function's arity is C+1, an appended Context. A
// non-zero opts.StepTimeout bounds the call; on expiry the invoking
// goroutine is abandoned (never killed, per spec §5) and the step is
// recorded as step/timeout.
func call(reg *stepdef.Registration, bound binder.BoundStep, scenario map[string]any, opts Options) (outcome Outcome, derr *diag.Error) {
	args := buildArgs(reg.FnType, bound.Captures, pickle.Step(bound.Step), scenario)

	type callResult struct {
		outcome Outcome
		derr    *diag.Error
	}
	done := make(chan callResult, 1)

	go func() {
		var res callResult
		defer func() {
			if r := recover(); r != nil {
				res = callResult{derr: diag.New(diag.StepException, bound.Step.Loc,
					"step function panicked", map[string]any{"panic": errors.Errorf("%v", r).Error()})}
			}
			done <- res
		}()
		results := reg.Fn.Call(args)
		res = callResult{outcome: interpretReturn(results)}
	}()

	if opts.StepTimeout <= 0 {
		r := <-done
		return r.outcome, r.derr
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.StepTimeout)
	defer cancel()
	select {
	case r := <-done:
		return r.outcome, r.derr
	case <-ctx.Done():
		return Outcome{}, diag.New(diag.StepTimeout, bound.Step.Loc,
			"step exceeded its time budget", map[string]any{"timeout": opts.StepTimeout.String()})
	}
}

func buildArgs(fnType reflect.Type, captures []*string, step pickle.Step, scenario map[string]any) []reflect.Value {
	n := fnType.NumIn()
	args := make([]reflect.Value, 0, n)
	for i := 0; i < len(captures) && i < n; i++ {
		paramType := fnType.In(i)
		args = append(args, captureArg(captures[i], paramType))
	}
	if n == len(captures)+1 {
		args = append(args, reflect.ValueOf(Context{Step: step, Scenario: scenario}))
	}
	return args
}

func captureArg(c *string, paramType reflect.Type) reflect.Value {
	if paramType.Kind() == reflect.String {
		if c == nil {
			return reflect.Zero(paramType)
		}
		return reflect.ValueOf(*c)
	}
	// Default: the declared parameter is *string (or compatible), the
	// natural Go shape for "optional capture" (design note §9).
	if c == nil {
		return reflect.Zero(paramType)
	}
	return reflect.ValueOf(c)
}

// interpretReturn adapts a step function's return value into an
// Outcome: zero returns are Unchanged; an explicit Outcome passes
// through; a map merges; nil (typed or untyped) is Unchanged; the
// Pending sentinel marks the step pending; anything else is Invalid.
func interpretReturn(results []reflect.Value) Outcome {
	if len(results) == 0 {
		return Unchanged
	}
	v := results[0]
	if !v.IsValid() {
		return Unchanged
	}
	if v.Kind() == reflect.Map && v.IsNil() {
		return Unchanged
	}
	raw := v.Interface()
	switch r := raw.(type) {
	case nil:
		return Unchanged
	case Outcome:
		return r
	case pendingSentinel:
		return PendingOutcome
	case map[string]any:
		return Merge(r)
	default:
		return Invalid(reflect.TypeOf(raw).String())
	}
}
