// Package diag defines the closed error taxonomy shared by every
// ShiftLefter component, plus the aggregate Diagnostics shape each
// phase that can fail returns. Errors are data: every failure is a
// plain value, never a panic, carrying a namespaced Type.
package diag

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
)

// ErrType is a namespaced, closed-set error type symbol such as
// "gherkin/unexpected_token" or "macro/undefined". New types MUST NOT be
// invented without a version bump (spec §7).
type ErrType string

const (
	IOFileNotFound      ErrType = "io/file_not_found"
	IOUTF8DecodeFailed  ErrType = "io/utf8_decode_failed"
	GherkinUnexpected   ErrType = "gherkin/unexpected_token"
	GherkinMissingName  ErrType = "gherkin/missing_name"
	GherkinCellCount    ErrType = "gherkin/inconsistent_cell_count"
	GherkinDocstring    ErrType = "gherkin/docstring_unterminated"
	GherkinDupExamples  ErrType = "gherkin/duplicate_examples_header"
	CanonicalRulesUnsup ErrType = "canonical/rules_unsupported"
	RegistryDuplicate   ErrType = "registry/duplicate"
	RegistryVariadic    ErrType = "registry/variadic_rejected"
	MacroFileNotFound   ErrType = "macro/file_not_found"
	MacroDuplicateKey   ErrType = "macro/duplicate_key"
	MacroMissingSteps   ErrType = "macro/missing_steps"
	MacroUndefined      ErrType = "macro/undefined"
	MacroEmptyExpansion ErrType = "macro/empty_expansion"
	MacroRecursion      ErrType = "macro/recursion_disallowed"
	MacroOutlineUnsup   ErrType = "macro/scenario_outline_not_supported"
	MacroArgUnsupported ErrType = "macro/argument_not_supported"
	SVOMissingGlossary  ErrType = "svo/missing_glossaries_config"
	SVOGlossaryNotFound ErrType = "svo/glossary_file_not_found"
	SVOUnknownSubject   ErrType = "svo/unknown_subject"
	SVOUnknownVerb      ErrType = "svo/unknown_verb"
	SVOUnknownInterface ErrType = "svo/unknown_interface"
	StepUndefined       ErrType = "step/undefined"
	StepAmbiguous       ErrType = "step/ambiguous"
	StepInvalidArity    ErrType = "step/invalid_arity"
	StepException       ErrType = "step/exception"
	StepInvalidReturn   ErrType = "step/invalid_return"
	StepTimeout         ErrType = "step/timeout"
	ConfigInvalidIface  ErrType = "config/invalid_interface"
	ConfigUnknownIfaceT ErrType = "config/unknown_interface_type"
	ConfigMissingRegs   ErrType = "config/macro_config_missing_registry_paths"
	ConfigWebdriver     ErrType = "config/webdriver_invalid_config"
)

// Error is the single data shape for every failure in the module.
type Error struct {
	Type     ErrType
	Message  string
	Location *location.Location
	Data     map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// New builds an Error at a given location with optional structured data.
func New(t ErrType, loc location.Location, message string, data map[string]any) *Error {
	l := loc
	return &Error{Type: t, Message: message, Location: &l, Data: data}
}

// NewNoLocation builds an Error with no associated source location
// (file-level failures such as a missing registry path).
func NewNoLocation(t ErrType, message string, data map[string]any) *Error {
	return &Error{Type: t, Message: message, Data: data}
}

// Wrap attaches a lower-level cause (e.g. a regexp compile failure) to a
// new Error, preserving the cause's message via github.com/pkg/errors so
// the original stack context is not lost.
func Wrap(t ErrType, loc location.Location, cause error, message string) *Error {
	wrapped := errors.Wrap(cause, message)
	data := map[string]any{"cause": wrapped.Error()}
	return New(t, loc, message, data)
}

// Counts summarizes a diagnostics collection for reporting.
type Counts struct {
	Undefined    int
	Ambiguous    int
	InvalidArity int
	SVOIssues    int
	MacroErrors  int
	ParseErrors  int
}

// Diagnostics is the aggregate error/issue report produced by parsing,
// macro expansion, and binding — collections retain source-order
// stability per spec §3.
type Diagnostics struct {
	Undefined    []*Error
	Ambiguous    []*Error
	InvalidArity []*Error
	SVOIssues    []*Error
	MacroErrors  []*Error
	ParseErrors  []*Error
}

// Counts computes the aggregate counts for this diagnostics collection.
func (d Diagnostics) Counts() Counts {
	return Counts{
		Undefined:    len(d.Undefined),
		Ambiguous:    len(d.Ambiguous),
		InvalidArity: len(d.InvalidArity),
		SVOIssues:    len(d.SVOIssues),
		MacroErrors:  len(d.MacroErrors),
		ParseErrors:  len(d.ParseErrors),
	}
}

// HasBlockingErrors reports whether any collected diagnostic must block
// runnability (everything except SVO issues, which are blocking only
// when their enforcement level is "error" — the binder tracks that
// itself in binder.Bind).
func (d Diagnostics) HasBlockingErrors() bool {
	return len(d.Undefined) > 0 || len(d.Ambiguous) > 0 || len(d.InvalidArity) > 0 ||
		len(d.MacroErrors) > 0 || len(d.ParseErrors) > 0
}

// ExitCode computes the process exit code for a completed run, per
// spec §6: 0 success, 1 suite failures, 2 planning failure. It never
// returns 3 (crash); mapping an actual crash to 3 is left to the caller.
// ShiftLefter never calls os.Exit itself; an embedding CLI (out of
// scope for this module) calls this to decide its own exit status.
func ExitCode(planningFailed bool, suiteFailed bool) int {
	switch {
	case planningFailed:
		return 2
	case suiteFailed:
		return 1
	default:
		return 0
	}
}
