// Package macro implements the macro registry and expander (spec
// 4.F): loading named step-sequences from INI-style files, detecting
// calls to them inside a pickle, validating the call context, and
// expanding each call into a synthetic wrapper step plus its expanded
// body with full provenance.
//
// The registry file format has no ecosystem INI library in the
// teacher's dependency graph (see DESIGN.md); it is a narrow,
// line-oriented dialect, so it is hand-parsed with bufio.Scanner in
// the same spirit as the teacher's own hand-rolled lexer rather than
// reached for via a general-purpose config library.
package macro

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/idhash"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
)

// CallSuffix is the literal suffix marking a step text as a macro call.
const CallSuffix = " +"

// IsCall reports whether text ends with the macro call suffix.
func IsCall(text string) bool {
	return strings.HasSuffix(text, CallSuffix)
}

// CallKey extracts the macro key from a call-suffixed step text.
// Internal whitespace in the key is preserved; only the surrounding
// whitespace (and the suffix itself) is stripped.
func CallKey(text string) string {
	return strings.TrimSpace(text[:len(text)-len(CallSuffix)])
}

// StepDef is one line of a macro's body.
type StepDef struct {
	Keyword string
	Text    string
	Loc     location.Location
}

// Macro is a single named, reusable step sequence.
type Macro struct {
	Key         string
	Description string
	Steps       []StepDef
	File        string
	Loc         location.Location
}

// Registry is an immutable, loaded set of macros keyed by name.
type Registry struct {
	macros map[string]*Macro
	order  []string
}

// Lookup returns the macro for key, if loaded.
func (r *Registry) Lookup(key string) (*Macro, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.macros[key]
	return m, ok
}

// Load parses an ordered list of registry files. Later files may add
// new keys but a key already defined (in this file or an earlier one)
// is a macro/duplicate_key error carrying both definitions' locations;
// the first definition wins and is kept.
func Load(paths []string) (*Registry, []*diag.Error) {
	reg := &Registry{macros: map[string]*Macro{}}
	var errs []*diag.Error

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, diag.NewNoLocation(diag.MacroFileNotFound,
				"macro registry file not found: "+path, map[string]any{"path": path}))
			continue
		}
		fileErrs := parseRegistryFile(reg, path, string(data))
		errs = append(errs, fileErrs...)
	}

	for _, key := range reg.order {
		m := reg.macros[key]
		if len(m.Steps) == 0 {
			errs = append(errs, diag.New(diag.MacroMissingSteps, m.Loc,
				"macro \""+key+"\" has no steps", map[string]any{"key": key}))
		}
	}
	return reg, errs
}

func parseRegistryFile(reg *Registry, path, content string) []*diag.Error {
	var errs []*diag.Error
	var current *Macro
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		trimmed := strings.TrimSpace(scanner.Text())
		loc := location.Location{Line: lineNo, Column: 0}

		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			key := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if existing, ok := reg.macros[key]; ok {
				errs = append(errs, diag.New(diag.MacroDuplicateKey, loc,
					"duplicate macro key \""+key+"\"",
					map[string]any{"key": key, "first_location": existing.Loc.String()}))
				current = nil
				continue
			}
			current = &Macro{Key: key, File: path, Loc: loc}
			reg.macros[key] = current
			reg.order = append(reg.order, key)
			continue
		}

		if current == nil {
			continue
		}

		if kv, ok := splitKeyValue(trimmed, "description"); ok {
			current.Description = kv
			continue
		}

		if kw, text, ok := splitStepLine(trimmed); ok {
			current.Steps = append(current.Steps, StepDef{Keyword: kw, Text: text, Loc: loc})
		}
	}
	return errs
}

func splitKeyValue(line, key string) (string, bool) {
	if !strings.HasPrefix(line, key) {
		return "", false
	}
	rest := strings.TrimSpace(line[len(key):])
	if rest == "" || (rest[0] != '=' && rest[0] != ':') {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

func splitStepLine(line string) (keyword, text string, ok bool) {
	tbl := dialect.Default()
	prefix, kw, found := tbl.Lookup(line)
	if !found || !dialect.StepKeywords[kw] {
		return "", "", false
	}
	return string(kw), strings.TrimSpace(line[len(prefix):]), true
}

// Expand runs macro expansion over every pickle, returning a new slice
// (inputs are never mutated) plus any context/lookup errors encountered.
// Per spec 4.F, a non-empty error list means the caller (the compiler)
// must abort rather than use the partially expanded output.
func Expand(pks []*pickle.Pickle, reg *Registry) ([]*pickle.Pickle, []*diag.Error) {
	var allErrs []*diag.Error
	out := make([]*pickle.Pickle, len(pks))
	for i, pk := range pks {
		steps, uses, errs := expandPickle(pk, reg)
		allErrs = append(allErrs, errs...)
		clone := *pk
		clone.Steps = steps
		clone.Macros = uses
		out[i] = &clone
	}
	return out, allErrs
}

func expandPickle(pk *pickle.Pickle, reg *Registry) ([]pickle.Step, []pickle.MacroUse, []*diag.Error) {
	var out []pickle.Step
	var uses []pickle.MacroUse
	var errs []*diag.Error
	seen := map[string]bool{}

	for _, s := range pk.Steps {
		if !IsCall(s.Text) {
			out = append(out, s)
			continue
		}
		key := CallKey(s.Text)

		if pk.RowLoc != nil {
			errs = append(errs, diag.New(diag.MacroOutlineUnsup, s.Loc,
				"macro call \""+key+"\" not supported inside a scenario-outline pickle",
				map[string]any{"key": key}))
			out = append(out, s)
			continue
		}
		if s.Docstring != nil || s.Table != nil {
			errs = append(errs, diag.New(diag.MacroArgUnsupported, s.Loc,
				"macro call \""+key+"\" does not accept a docstring or data-table argument",
				map[string]any{"key": key}))
			out = append(out, s)
			continue
		}
		def, ok := reg.Lookup(key)
		if !ok {
			errs = append(errs, diag.New(diag.MacroUndefined, s.Loc,
				"undefined macro \""+key+"\"", map[string]any{"key": key}))
			out = append(out, s)
			continue
		}
		if len(def.Steps) == 0 {
			errs = append(errs, diag.New(diag.MacroEmptyExpansion, s.Loc,
				"macro \""+key+"\" expands to zero steps", map[string]any{"key": key}))
			out = append(out, s)
			continue
		}

		recursive := false
		for _, body := range def.Steps {
			if IsCall(body.Text) {
				recursive = true
				errs = append(errs, diag.New(diag.MacroRecursion, body.Loc,
					"macro \""+key+"\" calls another macro; nesting is not allowed",
					map[string]any{"key": key}))
			}
		}
		if recursive {
			out = append(out, s)
			continue
		}

		wrapper := s
		wrapper.Synthetic = true
		wrapper.MacroRole = "call"
		wrapper.MacroKey = key
		out = append(out, wrapper)

		callSite := s.Loc
		defRef := pickle.MacroDefRef{File: def.File, Loc: def.Loc}
		for idx, body := range def.Steps {
			out = append(out, pickle.Step{
				ID:         idhash.ID("pst", "macro", key, strconv.Itoa(idx), body.Loc.String()),
				Keyword:    body.Keyword,
				Text:       body.Text,
				Origin:     s.Origin,
				Loc:        body.Loc,
				MacroRole:  "expanded",
				MacroKey:   key,
				MacroIndex: idx,
				CallSite:   &callSite,
				Definition: &defRef,
				DefinitionStep: &pickle.MacroDefRef{File: def.File, Loc: body.Loc},
			})
		}

		if !seen[key] {
			seen[key] = true
			uses = append(uses, pickle.MacroUse{
				Key: key, StepCount: len(def.Steps), CallSite: callSite, Definition: defRef,
			})
		}
	}
	return out, uses, errs
}
