package fuzzgherkin

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/idhash"
)

// Artifact is the saved-failure record from spec §6: "one directory per
// saved failure containing case, meta (seed, versions, options,
// timestamp), and result (signature, errors, timing)". ShiftLefter does
// not write this to disk itself (file I/O is an out-of-scope external
// collaborator per spec §1); Encode/Decode produce the CBOR-encoded
// bytes an embedder persists however it sees fit, mirroring the
// teacher's binary planfmt envelope repurposed from plan serialization
// to fuzzer artifact storage.
type Artifact struct {
	Case   ArtifactCase
	Meta   ArtifactMeta
	Result ArtifactResult
}

// ArtifactCase holds the exact source text that produced the failure.
type ArtifactCase struct {
	Source string
}

// ArtifactMeta records the identity of the run that produced this
// artifact: the seed and generator/mutator versions (part of artifact
// identity per spec §9), any caller-supplied options, and when it was
// captured.
type ArtifactMeta struct {
	Seed             int64
	GeneratorVersion string
	MutatorVersion   string
	Options          map[string]string
	Timestamp        int64 // Unix seconds; caller-stamped to keep this package free of non-deterministic clock reads at the wrong layer
}

// ArtifactResult captures the trial outcome that earned this case a
// save: its dedup signature, the mutator chain that produced it, any
// collected diagnostic messages, and timing.
type ArtifactResult struct {
	Signature   Signature
	MutatorPath []MutatorType
	Errors      []string
	ElapsedNS   int64
}

// NewArtifact builds an Artifact from a mutation trial, stamping the
// current live versions and the given timestamp (passed in, not read
// internally, so callers control determinism in tests).
func NewArtifact(src string, seed int64, kinds []MutatorType, tr TrialResult, options map[string]string, at time.Time) Artifact {
	var errs []string
	if tr.ErrorType != "" {
		errs = append(errs, tr.ErrorType)
	}
	return Artifact{
		Case: ArtifactCase{Source: src},
		Meta: ArtifactMeta{
			Seed:             seed,
			GeneratorVersion: GeneratorVersion,
			MutatorVersion:   MutatorVersion,
			Options:          options,
			Timestamp:        at.Unix(),
		},
		Result: ArtifactResult{
			Signature:   SignatureOf(kinds, tr),
			MutatorPath: kinds,
			Errors:      errs,
			ElapsedNS:   int64(tr.Elapsed),
		},
	}
}

// Digest is a deterministic, content-derived identifier for this
// artifact's failure signature — suitable as the "one directory per
// unique signature" key spec §6 describes, built the same way every
// other opaque ID in this module is (idhash.ID over canonical fields).
func (a Artifact) Digest() string {
	return idhash.ID("fz", a.Result.Signature.MutatorType, string(a.Result.Signature.Phase), a.Result.Signature.ErrorType)
}

// Encode renders a to its CBOR wire form.
func (a Artifact) Encode() ([]byte, error) {
	return cbor.Marshal(a)
}

// DecodeArtifact parses a CBOR-encoded Artifact previously produced by
// Encode.
func DecodeArtifact(b []byte) (Artifact, error) {
	var a Artifact
	err := cbor.Unmarshal(b, &a)
	return a, err
}
