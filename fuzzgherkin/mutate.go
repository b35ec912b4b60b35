package fuzzgherkin

import (
	"math/rand"
	"strings"
)

// MutatorType names one of the six point mutators spec 4.M defines, or
// the distinguished "combo" value used when two are applied together.
type MutatorType string

const (
	MutatorIndentDamage        MutatorType = "indent_damage"
	MutatorDelimiterRemoval    MutatorType = "delimiter_removal"
	MutatorTableCorruption     MutatorType = "table_corruption"
	MutatorDocstringDelimiter  MutatorType = "docstring_delimiter_removal"
	MutatorKeywordPerturbation MutatorType = "keyword_perturbation"
	MutatorColonRemoval        MutatorType = "colon_removal"
)

// Mutators lists every point mutator, in the order spec 4.M enumerates
// them — used by callers that want to sweep all six plus combos.
var Mutators = []MutatorType{
	MutatorIndentDamage,
	MutatorDelimiterRemoval,
	MutatorTableCorruption,
	MutatorDocstringDelimiter,
	MutatorKeywordPerturbation,
	MutatorColonRemoval,
}

// apply runs the single mutator named by kind against src, returning
// the mutated text unchanged if no site for that mutator exists (e.g.
// KeywordPerturbation on text with no recognizable keyword line).
func apply(kind MutatorType, src string, rng *rand.Rand) string {
	lines := strings.Split(src, "\n")
	switch kind {
	case MutatorIndentDamage:
		return mutateIndentDamage(lines, rng)
	case MutatorDelimiterRemoval:
		return mutateDelimiterRemoval(lines, rng)
	case MutatorTableCorruption:
		return mutateTableCorruption(lines, rng)
	case MutatorDocstringDelimiter:
		return mutateDocstringDelimiterRemoval(lines, rng)
	case MutatorKeywordPerturbation:
		return mutateKeywordPerturbation(lines, rng)
	case MutatorColonRemoval:
		return mutateColonRemoval(lines, rng)
	default:
		return src
	}
}

// Mutate applies one randomly chosen mutator, or (with probability
// comboProb) two distinct ones in sequence — spec 4.M's "a two-mutator
// combo" — and reports which mutator(s) ran so the caller can build a
// failure signature.
func Mutate(src string, rng *rand.Rand, comboProb float64) (string, []MutatorType) {
	first := Mutators[rng.Intn(len(Mutators))]
	out := apply(first, src, rng)
	kinds := []MutatorType{first}

	if rng.Float64() < comboProb {
		rest := make([]MutatorType, 0, len(Mutators)-1)
		for _, m := range Mutators {
			if m != first {
				rest = append(rest, m)
			}
		}
		second := rest[rng.Intn(len(rest))]
		out = apply(second, out, rng)
		kinds = append(kinds, second)
	}
	return out, kinds
}

func nonEmptyLineIndexes(lines []string) []int {
	var idx []int
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			idx = append(idx, i)
		}
	}
	return idx
}

// mutateIndentDamage picks a non-blank line and adds or strips leading
// whitespace, breaking the block-structure assumptions the parser's
// line-oriented scanning relies on for nested constructs.
func mutateIndentDamage(lines []string, rng *rand.Rand) string {
	idx := nonEmptyLineIndexes(lines)
	if len(idx) == 0 {
		return strings.Join(lines, "\n")
	}
	i := idx[rng.Intn(len(idx))]
	if rng.Intn(2) == 0 {
		lines[i] = strings.Repeat(" ", 1+rng.Intn(8)) + lines[i]
	} else {
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}

// mutateDelimiterRemoval strips one '|' cell delimiter from a table
// row, collapsing two cells into one and so reducing the row's cell
// count.
func mutateDelimiterRemoval(lines []string, rng *rand.Rand) string {
	var rowIdx []int
	for i, l := range lines {
		if strings.Count(l, "|") >= 2 {
			rowIdx = append(rowIdx, i)
		}
	}
	if len(rowIdx) == 0 {
		return strings.Join(lines, "\n")
	}
	i := rowIdx[rng.Intn(len(rowIdx))]
	pos := strings.IndexByte(lines[i], '|')
	// Remove a delimiter other than a leading/trailing one when possible
	// so the row still looks superficially table-like.
	rest := lines[i][pos+1:]
	if next := strings.IndexByte(rest, '|'); next >= 0 {
		pos = pos + 1 + next
	}
	lines[i] = lines[i][:pos] + lines[i][pos+1:]
	return strings.Join(lines, "\n")
}

// mutateTableCorruption adds or removes a cell from a table row,
// producing an inconsistent cell count relative to its neighbors.
func mutateTableCorruption(lines []string, rng *rand.Rand) string {
	var rowIdx []int
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "|") && strings.HasSuffix(t, "|") {
			rowIdx = append(rowIdx, i)
		}
	}
	if len(rowIdx) == 0 {
		return strings.Join(lines, "\n")
	}
	i := rowIdx[rng.Intn(len(rowIdx))]
	if rng.Intn(2) == 0 {
		lines[i] = lines[i] + " extra |"
	} else {
		t := lines[i]
		if last := strings.LastIndex(strings.TrimRight(t, " \t"), "|"); last > 0 {
			trimmed := strings.TrimRight(t, " \t")
			if prev := strings.LastIndex(trimmed[:last], "|"); prev >= 0 {
				lines[i] = trimmed[:prev+1]
			}
		}
	}
	return strings.Join(lines, "\n")
}

// mutateDocstringDelimiterRemoval deletes one fence line of a
// docstring (opening or closing), which should surface
// gherkin/docstring_unterminated.
func mutateDocstringDelimiterRemoval(lines []string, rng *rand.Rand) string {
	var fenceIdx []int
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if t == `"""` || strings.HasPrefix(t, `"""`) || t == "```" || strings.HasPrefix(t, "```") {
			fenceIdx = append(fenceIdx, i)
		}
	}
	if len(fenceIdx) == 0 {
		return strings.Join(lines, "\n")
	}
	i := fenceIdx[rng.Intn(len(fenceIdx))]
	out := append(append([]string{}, lines[:i]...), lines[i+1:]...)
	return strings.Join(out, "\n")
}

var keywordPerturbations = []string{"Feature", "Background", "Scenario", "Scenario Outline", "Examples", "Rule", "Given", "When", "Then", "And", "But"}

// mutateKeywordPerturbation corrupts the spelling of a keyword on one
// structural line (drop a letter, or swap case of its first rune),
// so the dialect table no longer recognizes it as that keyword.
func mutateKeywordPerturbation(lines []string, rng *rand.Rand) string {
	var hits []int
	for i, l := range lines {
		t := strings.TrimSpace(l)
		for _, kw := range keywordPerturbations {
			if strings.HasPrefix(t, kw+":") || strings.HasPrefix(t, kw+" ") {
				hits = append(hits, i)
				break
			}
		}
	}
	if len(hits) == 0 {
		return strings.Join(lines, "\n")
	}
	i := hits[rng.Intn(len(hits))]
	line := lines[i]
	leading := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	rest := strings.TrimLeft(line, " \t")
	if len(rest) == 0 {
		return strings.Join(lines, "\n")
	}
	if rng.Intn(2) == 0 && len(rest) > 1 {
		rest = rest[1:] // drop the first rune of the keyword
	} else {
		// Flip the case of the keyword's first letter so a dialect
		// lookup expecting exact-case "Given"/"Scenario"/... misses.
		first := rest[0]
		if first >= 'A' && first <= 'Z' {
			rest = strings.ToLower(rest[:1]) + rest[1:]
		} else if first >= 'a' && first <= 'z' {
			rest = strings.ToUpper(rest[:1]) + rest[1:]
		}
	}
	lines[i] = leading + rest
	return strings.Join(lines, "\n")
}

// mutateColonRemoval strips the trailing ':' from a block keyword
// line (Feature:, Scenario:, ...), which the dialect table requires
// for a block keyword match.
func mutateColonRemoval(lines []string, rng *rand.Rand) string {
	var hits []int
	for i, l := range lines {
		t := strings.TrimRight(l, " \t")
		if strings.HasSuffix(t, ":") {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return strings.Join(lines, "\n")
	}
	i := hits[rng.Intn(len(hits))]
	t := strings.TrimRight(lines[i], " \t")
	lines[i] = strings.TrimSuffix(t, ":")
	return strings.Join(lines, "\n")
}
