// Package compiler implements the single entry point that orchestrates
// glossary/config validation, macro loading and expansion, and binder
// invocation into one executable (or diagnostic) result (spec 4.I).
package compiler

import "github.com/SHIFT-LEFTER/shiftlefter-sub001/binder"

// InterfaceConfig names one configured step-interface adapter, modeled
// exactly as spec §6's `interfaces` map value shape: `{type, adapter,
// config}`. Loading an adapter's actual implementation is out of scope
// (spec §1 "browser automation adapters... interfaces only"); this
// struct exists only so `config/invalid_interface` and
// `config/unknown_interface_type` can be produced against it.
type InterfaceConfig struct {
	Type    string
	Adapter string
	Config  map[string]any
}

// InterfaceType is the closed set of interface types a compiler Config
// may declare (spec §6: `type` must be one of web/api/sms/email).
const (
	InterfaceWeb   = "web"
	InterfaceAPI   = "api"
	InterfaceSMS   = "sms"
	InterfaceEmail = "email"
)

// SVOConfig activates shifted mode (spec §6 "presence of this key
// activates shifted mode") and carries the enforcement level for each
// SVO check class.
type SVOConfig struct {
	UnknownSubject   binder.Enforcement
	UnknownVerb      binder.Enforcement
	UnknownInterface binder.Enforcement
}

// enforcement defaults to Warn when a Config leaves a level unset,
// matching a conservative "report but don't block" default.
func (c SVOConfig) levels() binder.EnforcementLevels {
	lvl := func(e binder.Enforcement) binder.Enforcement {
		if e == "" {
			return binder.Warn
		}
		return e
	}
	return binder.EnforcementLevels{
		UnknownSubject:   lvl(c.UnknownSubject),
		UnknownVerb:      lvl(c.UnknownVerb),
		UnknownInterface: lvl(c.UnknownInterface),
	}
}

// Config is the plain Go struct an embedder builds from its own loaded
// configuration (file/EDN/CLI parsing is explicitly out of scope, spec
// §1/§6) and passes to Compile.
type Config struct {
	// Dialect is the parser language code (default "en"), spec §6
	// `parser.dialect`.
	Dialect string

	// AllowPending mirrors `runner.allow-pending?`; it is not consulted
	// by Compile itself (it governs executor/exit-code behavior) but is
	// carried here so one Config value describes the whole run.
	AllowPending bool

	// MacrosEnabled mirrors `runner.macros.enabled?`; when true,
	// RegistryPaths must be non-empty.
	MacrosEnabled bool
	RegistryPaths []string

	// Glossaries mirrors spec §6's `glossaries` path map: a logical
	// name to an on-disk location. Compile only checks this map's
	// shape (present/non-empty, and that every named file exists via a
	// bare stat) — it never parses glossary *content*, since "SVO
	// glossary loader file I/O" is an explicit out-of-scope external
	// collaborator (spec §1). The parsed vocabulary itself is supplied
	// directly as Glossary below, built by the embedder.
	Glossaries map[string]string
	Glossary   *binder.Glossary

	// Interfaces mirrors spec §6's `interfaces` map.
	Interfaces map[string]InterfaceConfig

	// SVO's presence (non-nil) activates shifted mode (spec §6 "presence
	// of this key activates shifted mode").
	SVO *SVOConfig
}

// Shifted reports whether cfg requests SVO-validated ("shifted mode")
// compilation.
func (cfg Config) Shifted() bool {
	return cfg.SVO != nil
}
