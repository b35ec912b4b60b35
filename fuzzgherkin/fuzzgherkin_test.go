package fuzzgherkin_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/fuzzgherkin"
)

func TestGenerator_ProducesValidCases(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(1)
	for i := 0; i < 50; i++ {
		c := gen.Generate()
		report := fuzzgherkin.Validate(c)
		assert.Truef(t, report.OK(), "case %d failed: %s\n%s", i, report, c.Source)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := fuzzgherkin.NewGenerator(42).Generate()
	b := fuzzgherkin.NewGenerator(42).Generate()
	assert.Equal(t, a.Source, b.Source)
}

func TestGenerator_DifferentSeedsDiffer(t *testing.T) {
	gotDifferent := false
	a := fuzzgherkin.NewGenerator(1).Generate()
	for seed := int64(2); seed < 20; seed++ {
		b := fuzzgherkin.NewGenerator(seed).Generate()
		if b.Source != a.Source {
			gotDifferent = true
			break
		}
	}
	assert.True(t, gotDifferent, "expected at least one differing seed out of 19 tries")
}

func TestValidate_RoundtripHoldsForGeneratedText(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(7)
	c := gen.Generate()
	report := fuzzgherkin.Validate(c)
	require.True(t, report.RoundtripOK)
}

func TestMutate_EachMutatorChangesSomeGeneratedCase(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(3)
	rng := rand.New(rand.NewSource(9))
	for _, m := range fuzzgherkin.Mutators {
		changed := false
		for i := 0; i < 200; i++ {
			src := gen.Generate().Source
			out, kinds := fuzzgherkin.Mutate(src, rng, 0)
			if kinds[0] == m && out != src {
				changed = true
				break
			}
		}
		assert.Truef(t, changed, "mutator %s never changed any of 200 generated cases", m)
	}
}

func TestMutate_ComboAppliesTwoMutators(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(11)
	rng := rand.New(rand.NewSource(5))
	src := gen.Generate().Source
	_, kinds := fuzzgherkin.Mutate(src, rng, 1.0)
	assert.Len(t, kinds, 2)
	assert.NotEqual(t, kinds[0], kinds[1])
}

func TestRunMutationTrial_PassOnStructuredErrors(t *testing.T) {
	// A step line with no Feature: header at all is still something the
	// lexer can tokenize and the parser collects as gherkin/unexpected_token
	// rather than panicking on.
	tr := fuzzgherkin.RunMutationTrial("Given something happened\n", time.Second)
	assert.Equal(t, fuzzgherkin.OutcomePass, tr.Outcome)
}

func TestRunMutationTrial_TimesOut(t *testing.T) {
	tr := fuzzgherkin.RunMutationTrial("Feature: x\n  Scenario: y\n    Given z\n", 0)
	assert.Equal(t, fuzzgherkin.OutcomeTimeout, tr.Outcome)
}

func TestMutationHarness_DedupesBySignature(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(13)
	corpus := []string{gen.Generate().Source, gen.Generate().Source}

	h := fuzzgherkin.NewMutationHarness(time.Second, 0.3)
	h.RunCorpus(corpus, 99, 40, map[string]string{"generator_version": fuzzgherkin.GeneratorVersion}, time.Unix(0, 0))

	seen := map[fuzzgherkin.Signature]bool{}
	for _, a := range h.Artifacts {
		require.False(t, seen[a.Result.Signature], "signature %+v saved more than once", a.Result.Signature)
		seen[a.Result.Signature] = true
	}
}

func TestArtifact_EncodeDecodeRoundtrip(t *testing.T) {
	gen := fuzzgherkin.NewGenerator(21)
	src := gen.Generate().Source
	tr := fuzzgherkin.TrialResult{Outcome: fuzzgherkin.OutcomeUncaughtException, Phase: fuzzgherkin.PhaseParse, ErrorType: "boom"}
	art := fuzzgherkin.NewArtifact(src, 21, []fuzzgherkin.MutatorType{fuzzgherkin.MutatorColonRemoval}, tr, nil, time.Unix(1700000000, 0))

	b, err := art.Encode()
	require.NoError(t, err)

	decoded, err := fuzzgherkin.DecodeArtifact(b)
	require.NoError(t, err)
	assert.Equal(t, art.Case.Source, decoded.Case.Source)
	assert.Equal(t, art.Result.Signature, decoded.Result.Signature)
	assert.Equal(t, art.Meta.GeneratorVersion, decoded.Meta.GeneratorVersion)
}

func TestMinimize_ShrinksWhilePreservingSignature(t *testing.T) {
	// A fixed failure: any source containing the literal marker token
	// "BOOM" is treated as reproducing the target signature, regardless
	// of anything else in the text. A correct minimizer should shrink
	// this down to just that marker (plus whatever blank-line scaffolding
	// its chunking leaves behind).
	target := fuzzgherkin.Signature{MutatorType: "synthetic", Phase: fuzzgherkin.PhaseParse, ErrorType: "marker"}
	check := func(src string) (fuzzgherkin.Signature, bool) {
		for _, line := range splitLines(src) {
			if line == "BOOM" {
				return target, true
			}
		}
		return fuzzgherkin.Signature{}, false
	}

	src := "Feature: x\n\n  Scenario: y\n    Given a\nBOOM\n    Then b\n\n  Scenario: z\n    Given c\n"
	out := fuzzgherkin.Minimize(src, target, check, 2*time.Second)

	found := false
	for _, line := range splitLines(out) {
		if line == "BOOM" {
			found = true
		}
	}
	assert.True(t, found, "minimized output lost the marker line that defines the failure")
	assert.Lessf(t, len(out), len(src), "minimized output %q was not smaller than input %q", out, src)
}

func TestVersionsCompatible(t *testing.T) {
	assert.True(t, fuzzgherkin.VersionsCompatible(fuzzgherkin.GeneratorVersion, fuzzgherkin.MutatorVersion))
	assert.False(t, fuzzgherkin.VersionsCompatible("v0.0.1", fuzzgherkin.MutatorVersion))
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
