package compiler

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/binder"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/lexer"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/macro"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/parser"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/pickle"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/stepdef"
)

// interfacesSchema structurally validates the `interfaces` config map
// before shifted-mode compilation proceeds, grounded on
// core/types/validation.go's jsonschema.Draft2020 compile-then-validate
// shape.
const interfacesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "type": {"enum": ["web", "api", "sms", "email"]},
      "adapter": {"type": "string"},
      "config": {"type": "object"}
    },
    "required": ["type"]
  }
}`

// Result is the compiler's output: either an executable set of bound
// plans (Runnable) or a Diagnostics collection explaining why not.
type Result struct {
	Plans       []*binder.BoundPickle
	Runnable    bool
	Diagnostics diag.Diagnostics
}

func abortSVO(errs []*diag.Error) *Result {
	return &Result{Diagnostics: diag.Diagnostics{SVOIssues: errs}, Runnable: false}
}

func abortMacro(errs []*diag.Error) *Result {
	return &Result{Diagnostics: diag.Diagnostics{MacroErrors: errs}, Runnable: false}
}

// Compile runs the four-step pipeline of spec 4.I over a set of already
// pickled scenarios. It never touches the filesystem itself except for
// the bare existence check on cfg.Glossaries paths (content loading is
// an out-of-scope external collaborator — see Config.Glossaries) and
// macro.Load's registry file reads (in scope: spec 4.F core subsystem).
func Compile(pickles []*pickle.Pickle, snapshot []*stepdef.Registration, cfg Config, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "compiler")

	opts, errs := resolveValidationOptions(cfg)
	if len(errs) > 0 {
		logger.Warn("svo configuration rejected", "errors", len(errs))
		return abortSVO(errs)
	}

	pickles, errs = expandMacros(pickles, cfg, logger)
	if len(errs) > 0 {
		logger.Warn("macro phase aborted compilation", "errors", len(errs))
		return abortMacro(errs)
	}

	result := binder.Bind(pickles, snapshot, opts)
	logger.Info("compiled", "pickles", len(pickles), "runnable", result.Runnable)
	return &Result{Plans: result.Plans, Runnable: result.Runnable, Diagnostics: result.Diagnostics}
}

// CompileSource is a convenience entry point that runs the full
// lex → parse → pickle pipeline over raw source before Compile, for
// callers that have not already produced pickles themselves. A parser
// with errors aborts before pickling, per spec 4.D's "an AST with any
// error is invalid for pickling".
func CompileSource(source string, snapshot []*stepdef.Registration, cfg Config, logger *slog.Logger) *Result {
	lang := cfg.Dialect
	if lang == "" {
		if detected := lexer.DetectLanguage(source); detected != "" {
			lang = detected
		} else {
			lang = "en"
		}
	}
	table, ok := dialect.Load(lang)
	if !ok {
		return &Result{Diagnostics: diag.Diagnostics{ParseErrors: []*diag.Error{diag.NewNoLocation(diag.GherkinUnexpected,
			"unknown dialect: "+lang, map[string]any{"dialect": lang})}}}
	}

	toks := lexer.New(table).Lex(source)
	parsed := parser.Parse(toks)
	if len(parsed.Errors) > 0 {
		return &Result{Diagnostics: diag.Diagnostics{ParseErrors: parsed.Errors}, Runnable: false}
	}

	plans := pickle.Extract(parsed.Feature)
	pickles := pickle.Materialize(plans)
	return Compile(pickles, snapshot, cfg, logger)
}

// resolveValidationOptions implements step 1 of spec 4.I: strict
// glossary/config loading when shifted mode is requested, or nil
// options otherwise.
func resolveValidationOptions(cfg Config) (*binder.ValidationOptions, []*diag.Error) {
	if !cfg.Shifted() {
		return nil, nil
	}

	var errs []*diag.Error
	if len(cfg.Glossaries) == 0 {
		errs = append(errs, diag.NewNoLocation(diag.SVOMissingGlossary,
			"shifted mode requires a non-empty glossaries config", nil))
		return nil, errs
	}
	for name, path := range cfg.Glossaries {
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, diag.NewNoLocation(diag.SVOGlossaryNotFound,
				"glossary file not found: "+path, map[string]any{"name": name, "path": path}))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	interfaceErrs := validateInterfaces(cfg.Interfaces)
	if len(interfaceErrs) > 0 {
		return nil, interfaceErrs
	}

	ifaces := make(map[string]binder.InterfaceDef, len(cfg.Interfaces))
	for name, ic := range cfg.Interfaces {
		ifaces[name] = binder.InterfaceDef{Type: ic.Type, Adapter: ic.Adapter, Config: ic.Config}
	}

	return &binder.ValidationOptions{
		Glossary:    cfg.Glossary,
		Interfaces:  ifaces,
		Enforcement: cfg.SVO.levels(),
	}, nil
}

// validateInterfaces structurally checks cfg.Interfaces against
// interfacesSchema before any SVO validation runs, so a malformed
// `type` (anything outside web/api/sms/email) is reported as a
// config/unknown_interface_type diagnostic rather than silently
// admitted into the binder.
func validateInterfaces(ifaces map[string]InterfaceConfig) []*diag.Error {
	if len(ifaces) == 0 {
		return nil
	}
	raw, err := json.Marshal(ifaces)
	if err != nil {
		return []*diag.Error{diag.NewNoLocation(diag.ConfigInvalidIface,
			"interfaces config could not be encoded", map[string]any{"cause": err.Error()})}
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return []*diag.Error{diag.NewNoLocation(diag.ConfigInvalidIface,
			"interfaces config could not be decoded", map[string]any{"cause": err.Error()})}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("interfaces.json", strings.NewReader(interfacesSchema)); err != nil {
		return []*diag.Error{diag.NewNoLocation(diag.ConfigInvalidIface,
			"internal schema error", map[string]any{"cause": err.Error()})}
	}
	schema, err := compiler.Compile("interfaces.json")
	if err != nil {
		return []*diag.Error{diag.NewNoLocation(diag.ConfigInvalidIface,
			"internal schema compile error", map[string]any{"cause": err.Error()})}
	}

	if err := schema.Validate(generic); err != nil {
		ve := errors.Wrap(err, "interfaces config failed schema validation")
		// Distinguish "unknown type" from other structural violations by
		// re-checking each entry's Type against the closed set, since
		// jsonschema's error tree doesn't map 1:1 onto our two config
		// error types.
		var out []*diag.Error
		for name, ic := range ifaces {
			if !isKnownInterfaceType(ic.Type) {
				out = append(out, diag.NewNoLocation(diag.ConfigUnknownIfaceT,
					"unknown interface type: "+ic.Type,
					map[string]any{"interface": name, "type": ic.Type}))
			}
		}
		if len(out) == 0 {
			out = append(out, diag.NewNoLocation(diag.ConfigInvalidIface, ve.Error(), nil))
		}
		return out
	}
	return nil
}

func isKnownInterfaceType(t string) bool {
	switch t {
	case InterfaceWeb, InterfaceAPI, InterfaceSMS, InterfaceEmail:
		return true
	}
	return false
}

// expandMacros implements steps 2-3 of spec 4.I: load registries (if
// enabled) and run the expander, aborting on either phase's errors.
func expandMacros(pickles []*pickle.Pickle, cfg Config, logger *slog.Logger) ([]*pickle.Pickle, []*diag.Error) {
	if !cfg.MacrosEnabled {
		return pickles, nil
	}
	if len(cfg.RegistryPaths) == 0 {
		return nil, []*diag.Error{diag.NewNoLocation(diag.ConfigMissingRegs,
			"runner.macros.enabled? is true but registry-paths is empty", nil)}
	}

	reg, loadErrs := macro.Load(cfg.RegistryPaths)
	if len(loadErrs) > 0 {
		return nil, loadErrs
	}
	logger.Debug("macro registry loaded", "paths", cfg.RegistryPaths)

	expanded, expandErrs := macro.Expand(pickles, reg)
	if len(expandErrs) > 0 {
		return nil, expandErrs
	}
	return expanded, nil
}
