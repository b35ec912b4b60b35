package fuzzgherkin

import (
	"math/rand"
	"time"
)

// ValidGenerationReport summarizes an N-trial run of the valid-generation
// mode (spec 4.M "Valid generation"): each trial generates syntactically
// valid feature text and checks the four invariants in Validate.
type ValidGenerationReport struct {
	Trials   int
	Failures []ValidGenerationFailure
}

// ValidGenerationFailure pairs a failing case with its report.
type ValidGenerationFailure struct {
	Case   Case
	Report ValidationReport
}

// RunValidGeneration drives Generator.Generate/Validate for n trials,
// returning every trial whose ValidationReport.OK() is false. A
// property-verification run that returns zero Failures for a given
// seed/version/n is the generator-side correctness evidence spec 4.M
// asks for.
func RunValidGeneration(seed int64, n int) ValidGenerationReport {
	gen := NewGenerator(seed)
	report := ValidGenerationReport{Trials: n}
	for i := 0; i < n; i++ {
		c := gen.Generate()
		vr := Validate(c)
		if !vr.OK() {
			report.Failures = append(report.Failures, ValidGenerationFailure{Case: c, Report: vr})
		}
	}
	return report
}

// MutationHarness runs the mutation fuzzing mode (spec 4.M "Mutation")
// across a corpus of valid sources, deduplicating saved artifacts by
// Signature — "only the first occurrence of each signature is saved".
type MutationHarness struct {
	Timeout   time.Duration
	ComboProb float64

	seen      map[Signature]bool
	Artifacts []Artifact
}

// NewMutationHarness returns a harness with the given per-check timeout
// and two-mutator-combo probability.
func NewMutationHarness(timeout time.Duration, comboProb float64) *MutationHarness {
	return &MutationHarness{Timeout: timeout, ComboProb: comboProb, seen: map[Signature]bool{}}
}

// RunOne mutates src with rng, runs a trial, and — if the trial failed
// and its signature is new — appends a saved Artifact. It returns the
// trial result and whether a new artifact was saved.
func (h *MutationHarness) RunOne(src string, rng *rand.Rand, seed int64, options map[string]string, at time.Time) (TrialResult, bool) {
	mutated, kinds := Mutate(src, rng, h.ComboProb)
	tr := RunMutationTrial(mutated, h.Timeout)
	if !tr.Failed() {
		return tr, false
	}
	sig := SignatureOf(kinds, tr)
	if h.seen[sig] {
		return tr, false
	}
	h.seen[sig] = true
	h.Artifacts = append(h.Artifacts, NewArtifact(mutated, seed, kinds, tr, options, at))
	return tr, true
}

// RunCorpus applies RunOne across every source in corpus, trialsPerCase
// times each, using one rng seeded from seed for the whole sweep so the
// run is reproducible end to end.
func (h *MutationHarness) RunCorpus(corpus []string, seed int64, trialsPerCase int, options map[string]string, at time.Time) {
	rng := rand.New(rand.NewSource(seed))
	for _, src := range corpus {
		for i := 0; i < trialsPerCase; i++ {
			h.RunOne(src, rng, seed, options, at)
		}
	}
}

// Seen reports whether sig has already been saved by this harness.
func (h *MutationHarness) Seen(sig Signature) bool {
	return h.seen[sig]
}
