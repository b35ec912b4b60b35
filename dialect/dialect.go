// Package dialect holds per-language Gherkin keyword tables. Each
// dialect maps canonical keywords to a set of source prefixes; lookup is
// longest-prefix-first so e.g. "Scenario Outline" beats "Scenario" in
// languages where one prefixes the other.
//
// Grounded on the teacher's keyword-constant tables in
// runtime/lexer/tokens.go and the table-driven shape of
// runtime/lexer/keywords_test.go.
package dialect

import "sort"

// Keyword is one of the canonical Gherkin keywords. Block keywords
// require a trailing ':'; step keywords do not.
type Keyword string

const (
	Feature         Keyword = "feature"
	Background      Keyword = "background"
	Scenario        Keyword = "scenario"
	ScenarioOutline Keyword = "scenario_outline"
	Examples        Keyword = "examples"
	Rule            Keyword = "rule"
	Given           Keyword = "given"
	When            Keyword = "when"
	Then            Keyword = "then"
	And             Keyword = "and"
	But             Keyword = "but"
	Star            Keyword = "star"
)

// BlockKeywords require a trailing ':' and have a name after the colon.
var BlockKeywords = map[Keyword]bool{
	Feature: true, Background: true, Scenario: true,
	ScenarioOutline: true, Examples: true, Rule: true,
}

// StepKeywords introduce a step line; they consume only their prefix.
var StepKeywords = map[Keyword]bool{
	Given: true, When: true, Then: true, And: true, But: true, Star: true,
}

// Entry is one (prefix, canonical keyword) pair in a dialect table.
type Entry struct {
	Prefix  string
	Keyword Keyword
}

// Table is a language's ordered (longest prefix first) keyword table.
type Table struct {
	Language string
	Entries  []Entry
}

// Lookup returns the longest prefix of text that matches a registered
// keyword prefix, and the keyword it maps to. ok is false if no prefix
// of text matches any entry.
func (t *Table) Lookup(text string) (prefix string, kw Keyword, ok bool) {
	for _, e := range t.Entries {
		if len(e.Prefix) <= len(text) && text[:len(e.Prefix)] == e.Prefix {
			return e.Prefix, e.Keyword, true
		}
	}
	return "", "", false
}

// builtins holds the small set of dialects this module ships with. This
// is intentionally a subset of the ~70-language upstream Gherkin dialect
// table: the spec only requires dialect-aware, longest-match dispatch to
// exist, not an exhaustive embedded database of every natural language.
var builtins = map[string]map[Keyword][]string{
	"en": {
		Feature: {"Feature"}, Background: {"Background"},
		ScenarioOutline: {"Scenario Outline", "Scenario Template"},
		Scenario:        {"Scenario", "Example"},
		Examples:        {"Examples", "Scenarios"},
		Rule:            {"Rule"},
		Given:           {"Given"}, When: {"When"}, Then: {"Then"},
		And: {"And"}, But: {"But"}, Star: {"*"},
	},
	"de": {
		Feature: {"Funktionalität"}, Background: {"Grundlage"},
		ScenarioOutline: {"Szenariogrundriss"},
		Scenario:        {"Szenario", "Beispiel"},
		Examples:        {"Beispiele"},
		Rule:            {"Regel"},
		Given:           {"Angenommen"}, When: {"Wenn"}, Then: {"Dann"},
		And: {"Und"}, But: {"Aber"}, Star: {"*"},
	},
	"fr": {
		Feature: {"Fonctionnalité"}, Background: {"Contexte"},
		ScenarioOutline: {"Plan du scénario", "Plan du Scénario"},
		Scenario:        {"Scénario"},
		Examples:        {"Exemples"},
		Rule:            {"Règle"},
		Given:           {"Soit", "Etant donné", "Étant donné"}, When: {"Quand", "Lorsque"}, Then: {"Alors"},
		And: {"Et"}, But: {"Mais"}, Star: {"*"},
	},
	"pt": {
		Feature: {"Funcionalidade"}, Background: {"Contexto"},
		ScenarioOutline: {"Esquema do Cenário"},
		Scenario:        {"Cenário", "Exemplo"},
		Examples:        {"Exemplos"},
		Rule:            {"Regra"},
		Given:           {"Dado"}, When: {"Quando"}, Then: {"Então"},
		And: {"E"}, But: {"Mas"}, Star: {"*"},
	},
	"es": {
		Feature: {"Característica"}, Background: {"Antecedentes"},
		ScenarioOutline: {"Esquema del escenario"},
		Scenario:        {"Escenario"},
		Examples:        {"Ejemplos"},
		Rule:            {"Regla"},
		Given:           {"Dado"}, When: {"Cuando"}, Then: {"Entonces"},
		And: {"Y"}, But: {"Pero"}, Star: {"*"},
	},
}

// Load returns the dialect Table for the given language code, defaulting
// to English ("en") when lang is empty. ok is false for an unknown
// language code.
func Load(lang string) (*Table, bool) {
	if lang == "" {
		lang = "en"
	}
	kws, ok := builtins[lang]
	if !ok {
		return nil, false
	}
	var entries []Entry
	for kw, prefixes := range kws {
		for _, p := range prefixes {
			entries = append(entries, Entry{Prefix: p, Keyword: kw})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Prefix) > len(entries[j].Prefix)
	})
	return &Table{Language: lang, Entries: entries}, true
}

// Default returns the built-in English dialect table.
func Default() *Table {
	t, _ := Load("en")
	return t
}

// Languages lists the built-in dialect codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(builtins))
	for l := range builtins {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
