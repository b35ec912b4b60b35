// Package fuzzgherkin implements the property-verification harness
// from spec 4.M: a valid-input generator, six source mutators (plus
// combos), and a delta-debug minimizer, all driving the front end
// (location → lexer → parser → pickle → printer) rather than standing
// as a separate subsystem.
//
// Grounded on core/planfmt/fuzz_test.go's fuzz-harness shape (generate
// → check invariants → shrink on failure) and core/invariant/invariant.go's
// property-checking loop, adapted from plan-format fuzzing to Gherkin
// source fuzzing. Generator and mutator versions are part of artifact
// identity per spec §9: VersionsCompatible reports (via
// golang.org/x/mod/semver) whether an artifact's recorded versions match
// the live ones, since a version bump invalidates replay by design.
package fuzzgherkin

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// GeneratorVersion and MutatorVersion are stamped into every generated
// case and saved artifact. Bump either when the corresponding
// algorithm's output distribution changes in a way that would make old
// corpora non-reproducible.
const (
	GeneratorVersion = "v1.0.0"
	MutatorVersion   = "v1.0.0"
)

func init() {
	// Fail fast (at package init, not at first use) if either version
	// constant is not a well-formed semver the comparison below can use.
	if !semver.IsValid(GeneratorVersion) {
		panic(fmt.Sprintf("fuzzgherkin: GeneratorVersion %q is not valid semver", GeneratorVersion))
	}
	if !semver.IsValid(MutatorVersion) {
		panic(fmt.Sprintf("fuzzgherkin: MutatorVersion %q is not valid semver", MutatorVersion))
	}
}

// VersionsCompatible reports whether a recorded (generatorVersion,
// mutatorVersion) pair from a saved artifact matches the versions this
// build produces. Per spec §9's design note, a mismatch in either
// direction means the artifact cannot be meaningfully replayed or
// compared against live output — it invalidates the corpus entry by
// design rather than silently reinterpreting it under a new algorithm.
func VersionsCompatible(generatorVersion, mutatorVersion string) bool {
	return semver.Compare(generatorVersion, GeneratorVersion) == 0 &&
		semver.Compare(mutatorVersion, MutatorVersion) == 0
}
