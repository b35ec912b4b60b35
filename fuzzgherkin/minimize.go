package fuzzgherkin

import (
	"strings"
	"time"
)

// Strategy selects a delta-debugging granularity for Minimize.
type Strategy string

const (
	// StrategyStructured removes whole blank-line-delimited paragraphs at
	// a time, which in a generated Gherkin document are the feature
	// header, the background, each scenario, and each Examples block.
	// Single steps and single Examples rows are not removed on their own
	// by this strategy.
	StrategyStructured Strategy = "structured"
	// StrategyRawLines removes arbitrary physical lines, a finer-grained
	// and more broadly applicable fallback when paragraph boundaries
	// don't line up with the minimal failing shape.
	StrategyRawLines Strategy = "raw_lines"
)

// CheckFunc re-runs a candidate source through whatever trial produced
// the original failure and reports its signature. ok is false when the
// candidate doesn't reproduce any failure at all (e.g. the mutation
// that was needed got minimized away).
type CheckFunc func(source string) (sig Signature, ok bool)

// Minimize shrinks src to a smaller input that still reproduces target,
// trying both delta-debugging strategies within the shared budget and
// returning the smaller of the two results (ties keep whichever ran
// first). Strategies run back-to-back, each gated on the same deadline,
// so a slow structured pass can starve the raw_lines pass of time but
// never exceed the overall budget.
func Minimize(src string, target Signature, check CheckFunc, budget time.Duration) string {
	deadline := time.Now().Add(budget)

	structured := minimizeWith(src, target, check, deadline, paragraphs, strings.Join)
	if time.Now().After(deadline) {
		return structured
	}
	rawLines := minimizeWith(src, target, check, deadline, physicalLines, strings.Join)

	if len(rawLines) < len(structured) {
		return rawLines
	}
	return structured
}

// MinimizeStrategy runs a single named strategy, for callers that want
// to compare structured vs. raw_lines results directly rather than
// taking Minimize's "smaller wins" default.
func MinimizeStrategy(src string, target Signature, check CheckFunc, budget time.Duration, strategy Strategy) string {
	deadline := time.Now().Add(budget)
	switch strategy {
	case StrategyRawLines:
		return minimizeWith(src, target, check, deadline, physicalLines, strings.Join)
	default:
		return minimizeWith(src, target, check, deadline, paragraphs, strings.Join)
	}
}

func physicalLines(src string) []string {
	return strings.Split(src, "\n")
}

// paragraphs splits src into blank-line-delimited chunks, keeping each
// chunk's trailing blank separator line attached so rejoining with "\n"
// reproduces well-formed spacing between surviving chunks.
func paragraphs(src string) []string {
	lines := strings.Split(src, "\n")
	var chunks []string
	var cur []string
	for _, l := range lines {
		cur = append(cur, l)
		if strings.TrimSpace(l) == "" {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, "\n"))
	}
	return chunks
}

func minimizeWith(src string, target Signature, check CheckFunc, deadline time.Time,
	split func(string) []string, join func([]string, string) string) string {

	chunks := split(src)
	test := func(candidate []string) bool {
		if time.Now().After(deadline) {
			return false
		}
		joined := join(candidate, "\n")
		sig, ok := check(joined)
		return ok && sig == target
	}
	result := ddmin(chunks, test, deadline)
	return join(result, "\n")
}

// ddmin is the standard delta-debugging minimization loop (Zeller &
// Hildebrandt): repeatedly try removing ever-smaller contiguous chunks
// from the candidate, keeping any removal that still reproduces the
// target failure, and increasing granularity only when a full sweep at
// the current granularity removes nothing.
func ddmin(chunks []string, test func([]string) bool, deadline time.Time) []string {
	n := 2
	cur := append([]string{}, chunks...)

	for len(cur) >= 1 {
		if time.Now().After(deadline) {
			break
		}
		chunkSize := (len(cur) + n - 1) / n
		if chunkSize < 1 {
			break
		}
		removedAny := false

		for start := 0; start < len(cur); start += chunkSize {
			if time.Now().After(deadline) {
				break
			}
			end := start + chunkSize
			if end > len(cur) {
				end = len(cur)
			}
			candidate := make([]string, 0, len(cur)-(end-start))
			candidate = append(candidate, cur[:start]...)
			candidate = append(candidate, cur[end:]...)
			if len(candidate) == len(cur) {
				continue
			}
			if test(candidate) {
				cur = candidate
				if n > 2 {
					n--
				}
				removedAny = true
				break
			}
		}

		if !removedAny {
			if n >= len(cur) {
				break
			}
			n *= 2
			if n > len(cur) {
				n = len(cur)
			}
		}
	}
	return cur
}
