package fuzzgherkin

import (
	"fmt"
	"math/rand"
	"strings"
)

// Case is one generated or mutated Gherkin source, paired with the
// metadata the validator and minimizer need without having to re-parse
// it to answer simple questions like "does this contain a Rule".
type Case struct {
	Source   string
	Seed     int64
	HasRule  bool
	HasMacro bool
}

// Generator produces syntactically valid Gherkin feature text, seeded
// by (seed, GeneratorVersion) per spec §9 — the version is part of the
// generator's own identity, not a parameter a caller threads through,
// so two Generators built from the same seed under the same build
// always produce the same sequence of cases.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// NewGenerator returns a Generator whose output is a deterministic
// function of seed: repeated Generate() calls from two Generators
// built with the same seed, in the same process generation, yield
// identical sequences.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

var stepVocabulary = []string{
	`I am logged in as "alice"`,
	`I navigate to the dashboard`,
	`I click the "submit" button`,
	`the page title is "Welcome"`,
	`a response of "200" is returned`,
	`the order total is 42`,
	`I log in as "<username>" with role <role>`,
	`the cart contains <count> items`,
	`an email is sent to "<username>@example.com"`,
}

var nameVocabulary = []string{
	"checkout flow", "login form", "search results", "account settings",
	"password reset", "shopping cart", "order history", "admin panel",
}

var tagVocabulary = []string{"@smoke", "@regression", "@wip", "@slow", "@ui", "@api"}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *Generator) maybe(p float64) bool {
	return g.rng.Float64() < p
}

func (g *Generator) tagLine(indent string) string {
	n := 1 + g.rng.Intn(2)
	seen := map[string]bool{}
	var tags []string
	for len(tags) < n {
		t := g.pick(tagVocabulary)
		if seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return indent + strings.Join(tags, " ")
}

func (g *Generator) stepLines(indent string, n int) []string {
	keywords := []string{"Given", "When", "Then"}
	var lines []string
	for i := 0; i < n; i++ {
		kw := keywords[0]
		if i < len(keywords) {
			kw = keywords[i]
		} else if g.maybe(0.5) {
			kw = "And"
		} else {
			kw = "But"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", indent, kw, g.pick(stepVocabulary)))
		if g.maybe(0.15) {
			lines = append(lines, indent+`  """`)
			lines = append(lines, indent+"  supporting detail line")
			lines = append(lines, indent+`  """`)
		} else if g.maybe(0.15) {
			lines = append(lines, indent+"  | field | value |")
			lines = append(lines, indent+"  | name  | alice |")
		}
	}
	return lines
}

func (g *Generator) background(indent string) []string {
	lines := []string{indent + "Background:"}
	lines = append(lines, g.stepLines(indent+"  ", 1+g.rng.Intn(2))...)
	return lines
}

func (g *Generator) scenario(indent string) []string {
	var lines []string
	if g.maybe(0.6) {
		lines = append(lines, g.tagLine(indent))
	}
	lines = append(lines, fmt.Sprintf("%sScenario: %s", indent, g.pick(nameVocabulary)))
	lines = append(lines, g.stepLines(indent+"  ", 2+g.rng.Intn(3))...)
	return lines
}

func (g *Generator) outline(indent string) []string {
	var lines []string
	if g.maybe(0.6) {
		lines = append(lines, g.tagLine(indent))
	}
	lines = append(lines, fmt.Sprintf("%sScenario Outline: %s", indent, g.pick(nameVocabulary)))
	lines = append(lines, indent+"  When I log in as \"<username>\" with role <role>")
	lines = append(lines, indent+"  Then the cart contains <count> items")
	lines = append(lines, "")
	lines = append(lines, indent+"  Examples:")
	lines = append(lines, indent+"    | role  | username | count |")
	rows := 1 + g.rng.Intn(3)
	roles := []string{"admin", "user", "guest"}
	names := []string{"alice", "bob", "carol", "dave"}
	for i := 0; i < rows; i++ {
		lines = append(lines, fmt.Sprintf("%s    | %s | %s    | %d     |",
			indent, roles[i%len(roles)], names[i%len(names)], i+1))
	}
	return lines
}

// Generate produces one syntactically valid feature document. The
// result always lexes and parses with zero errors and pickles
// successfully; Case.HasRule tells the caller whether to skip the
// canonical-idempotence check per spec's "(unless rules)" carve-out.
func (g *Generator) Generate() Case {
	var lines []string
	lines = append(lines, fmt.Sprintf("Feature: %s", g.pick(nameVocabulary)))
	if g.maybe(0.5) {
		lines = append(lines, "  As a user")
		lines = append(lines, "  I want the feature to behave correctly")
	}

	hasRule := g.maybe(0.2)
	hasMacro := false

	if g.maybe(0.4) {
		lines = append(lines, "")
		lines = append(lines, g.background("  ")...)
	}

	if hasRule {
		lines = append(lines, "")
		lines = append(lines, "  Rule: business rule applies")
		if g.maybe(0.5) {
			lines = append(lines, "")
			lines = append(lines, g.background("    ")...)
		}
		n := 1 + g.rng.Intn(2)
		for i := 0; i < n; i++ {
			lines = append(lines, "")
			if g.maybe(0.3) {
				lines = append(lines, g.outline("    ")...)
			} else {
				lines = append(lines, g.scenario("    ")...)
			}
		}
	} else {
		n := 1 + g.rng.Intn(3)
		for i := 0; i < n; i++ {
			lines = append(lines, "")
			if g.maybe(0.3) {
				lines = append(lines, g.outline("  ")...)
			} else {
				lines = append(lines, g.scenario("  ")...)
			}
		}
	}

	src := strings.Join(lines, "\n") + "\n"
	return Case{Source: src, Seed: g.seed, HasRule: hasRule, HasMacro: hasMacro}
}
