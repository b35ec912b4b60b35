// Package lexer implements the dialect-aware, line-oriented Gherkin
// lexer (spec 4.C). Lexing is total: every input that passes UTF-8
// validation lexes to a token stream ending in an eof token, with no
// exceptions raised for malformed keywords — those fall back to plain
// text tokens, to be rejected (or not) by the parser.
//
// Grounded on the hand-rolled character-class scanning style of
// runtime/lexer/lexer.go, generalized from opal's three-mode shell/
// decorator scanner down to Gherkin's simpler per-line keyword dispatch.
package lexer

import (
	"strings"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/dialect"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/token"
)

// Lexer scans a whole source string into a token slice. It holds no
// mutable cross-line state beyond the active dialect table and whether
// it is inside a docstring (where keyword lines are plain text).
type Lexer struct {
	table        *dialect.Table
	inDocstring  bool
	docstringTag string // the exact fence ("\"\"\"" or "```") that opened it
}

// New returns a Lexer using the given dialect table, or the default
// English table when table is nil.
func New(table *dialect.Table) *Lexer {
	if table == nil {
		table = dialect.Default()
	}
	return &Lexer{table: table}
}

// DetectLanguage scans input for a leading "# language: xx" header
// (only recognized before any other non-blank content) and returns the
// language code, or "" if none is present.
func DetectLanguage(input string) string {
	for _, l := range location.SplitLines(input) {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue
		}
		if lang, ok := parseLanguageHeader(trimmed); ok {
			return lang
		}
		if strings.HasPrefix(trimmed, "#") {
			// Some other comment before any language header: keep scanning,
			// since the header is defined relative to "first non-blank,
			// non-comment line" only for dialect purposes but may itself
			// be preceded by unrelated comments in practice.
			continue
		}
		break
	}
	return ""
}

func parseLanguageHeader(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	rest := strings.TrimSpace(trimmed[1:])
	const marker = "language:"
	if !strings.HasPrefix(rest, marker) {
		return "", false
	}
	lang := strings.TrimSpace(rest[len(marker):])
	if lang == "" {
		return "", false
	}
	return lang, true
}

// Lex tokenizes input line-by-line and returns the full token stream,
// ending with a single eof token. Lex never returns an error: invalid
// UTF-8 is the caller's concern (see the location package), and any
// malformed keyword line simply becomes a text token per spec's total
// lexing guarantee.
func (lx *Lexer) Lex(input string) []token.Token {
	var toks []token.Token
	lines := location.SplitLines(input)

	for _, line := range lines {
		toks = append(toks, lx.lexLine(line)...)
	}

	eofLoc := location.Location{Line: len(lines) + 1, Column: 0}
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		eofLoc = location.Location{Line: last.Number + 1, Column: 0}
	}
	toks = append(toks, token.Token{Kind: token.KindEOF, Location: eofLoc})
	return toks
}

func (lx *Lexer) lexLine(line location.Line) []token.Token {
	loc := location.Location{Line: line.Number, Column: 0}
	trimmed := strings.TrimLeft(line.Content, " \t")
	leadingWS := line.Content[:len(line.Content)-len(trimmed)]
	indent := len([]rune(leadingWS))

	if lx.inDocstring {
		if fence, mt, ok := matchDocstringFence(trimmed); ok && fence == lx.docstringTag {
			lx.inDocstring = false
			return []token.Token{{
				Kind: token.KindDocstringSeparator, Raw: line.Raw(), Text: fence,
				Location: loc, LeadingWS: leadingWS, Indent: indent, MediaType: mt,
			}}
		}
		return []token.Token{{
			Kind: token.KindText, Raw: line.Raw(), Text: line.Content,
			Location: loc, LeadingWS: leadingWS, Indent: indent,
		}}
	}

	if trimmed == "" {
		return []token.Token{{Kind: token.KindEmpty, Raw: line.Raw(), Location: loc}}
	}

	if lang, ok := parseLanguageHeader(trimmed); ok {
		return []token.Token{{
			Kind: token.KindLanguageHeader, Raw: line.Raw(), Text: lang,
			Location: loc, LeadingWS: leadingWS, Indent: indent,
		}}
	}

	if strings.HasPrefix(trimmed, "#") {
		return []token.Token{{
			Kind: token.KindComment, Raw: line.Raw(), Text: strings.TrimSpace(trimmed[1:]),
			Location: loc, LeadingWS: leadingWS, Indent: indent,
		}}
	}

	if fence, mt, ok := matchDocstringFence(trimmed); ok {
		lx.inDocstring = true
		lx.docstringTag = fence
		return []token.Token{{
			Kind: token.KindDocstringSeparator, Raw: line.Raw(), Text: fence,
			Location: loc, LeadingWS: leadingWS, Indent: indent, MediaType: mt,
		}}
	}

	if strings.HasPrefix(trimmed, "|") {
		cells := splitTableCells(trimmed)
		return []token.Token{{
			Kind: token.KindTableRow, Raw: line.Raw(), Text: trimmed,
			Location: loc, LeadingWS: leadingWS, Indent: indent, Cells: cells,
		}}
	}

	if strings.HasPrefix(trimmed, "@") {
		return lx.lexTagLine(line, trimmed, leadingWS, indent)
	}

	if prefix, kw, ok := lx.table.Lookup(trimmed); ok {
		return lx.lexKeywordLine(line, trimmed, prefix, kw, leadingWS, indent)
	}

	return []token.Token{{
		Kind: token.KindText, Raw: line.Raw(), Text: trimmed,
		Location: loc, LeadingWS: leadingWS, Indent: indent,
	}}
}

// lexTagLine splits a tag line into individual @atom tokens. Each
// token's Raw is its own source slice (leading whitespace plus the atom
// text); concatenating every atom's Raw reproduces the full line,
// including its EOL on the final atom, so the token-roundtrip invariant
// (spec invariant 1) holds at the sub-line granularity too.
func (lx *Lexer) lexTagLine(line location.Line, trimmed, leadingWS string, indent int) []token.Token {
	loc := location.Location{Line: line.Number, Column: 0}
	content := line.Content
	col := 0
	var toks []token.Token

	fields := splitPreservingOffsets(content)
	for i, f := range fields {
		raw := f.raw
		if i == len(fields)-1 {
			raw += line.EOL
		}
		toks = append(toks, token.Token{
			Kind: token.KindTag, Raw: raw, Text: strings.TrimPrefix(f.text, "@"),
			Location: location.Location{Line: line.Number, Column: f.col},
		})
		col = f.col + len([]rune(f.text))
	}
	_ = trimmed
	_ = leadingWS
	_ = indent
	_ = loc
	_ = col
	if len(toks) == 0 {
		// Defensive: a line of only "@" atoms with no content still
		// produces a single empty-ish token so Raw accounting holds.
		return []token.Token{{Kind: token.KindEmpty, Raw: line.Raw(), Location: loc}}
	}
	return toks
}

type field struct {
	raw  string // includes any leading whitespace belonging to this field
	text string // the field's own text (e.g. "@fast")
	col  int    // rune column where text starts
}

// splitPreservingOffsets splits content on runs of horizontal whitespace,
// attaching each run's leading whitespace to the following field's Raw so
// that concatenating every field's Raw reproduces content exactly.
func splitPreservingOffsets(content string) []field {
	var fields []field
	runes := []rune(content)
	i := 0
	n := len(runes)
	for i < n {
		start := i
		for i < n && (runes[i] == ' ' || runes[i] == '\t') {
			i++
		}
		wsEnd := i
		textStart := i
		for i < n && runes[i] != ' ' && runes[i] != '\t' {
			i++
		}
		if textStart == i {
			// Trailing whitespace with nothing after it: fold into the
			// previous field if any, else drop (handled by caller).
			if len(fields) > 0 {
				fields[len(fields)-1].raw += string(runes[start:i])
			}
			continue
		}
		fields = append(fields, field{
			raw:  string(runes[start:i]),
			text: string(runes[textStart:i]),
			col:  textStart,
		})
		_ = wsEnd
	}
	return fields
}

func (lx *Lexer) lexKeywordLine(line location.Line, trimmed, prefix string, kw dialect.Keyword, leadingWS string, indent int) []token.Token {
	loc := location.Location{Line: line.Number, Column: 0}
	residue := trimmed[len(prefix):]

	if dialect.BlockKeywords[kw] {
		colonIdx := strings.Index(residue, ":")
		if colonIdx < 0 {
			// Not actually a block header (no trailing colon): treat the
			// whole line as text, per the total-lexing fallback policy.
			return []token.Token{{
				Kind: token.KindText, Raw: line.Raw(), Text: trimmed,
				Location: loc, LeadingWS: leadingWS, Indent: indent,
			}}
		}
		beforeColon := strings.TrimRight(residue[:colonIdx], " \t")
		if strings.TrimSpace(beforeColon) != "" {
			// Extra non-whitespace content between the keyword and the
			// colon: not a valid block header either.
			return []token.Token{{
				Kind: token.KindText, Raw: line.Raw(), Text: trimmed,
				Location: loc, LeadingWS: leadingWS, Indent: indent,
			}}
		}
		name := strings.TrimSpace(residue[colonIdx+1:])
		return []token.Token{{
			Kind: blockKind(kw), Raw: line.Raw(), Text: name, Keyword: string(kw),
			Location: loc, LeadingWS: leadingWS, Indent: indent,
		}}
	}

	// Step keyword: consume the prefix and at most one following space,
	// then trim only trailing whitespace from the residue.
	stepText := residue
	if strings.HasPrefix(stepText, " ") {
		stepText = stepText[1:]
	}
	stepText = strings.TrimRight(stepText, " \t")
	return []token.Token{{
		Kind: token.KindStepLine, Raw: line.Raw(), Text: stepText, Keyword: string(kw),
		Location: loc, LeadingWS: leadingWS, Indent: indent,
	}}
}

func blockKind(kw dialect.Keyword) token.Kind {
	switch kw {
	case dialect.Feature:
		return token.KindFeatureLine
	case dialect.Background:
		return token.KindBackgroundLine
	case dialect.Scenario:
		return token.KindScenarioLine
	case dialect.ScenarioOutline:
		return token.KindScenarioOutlineLine
	case dialect.Rule:
		return token.KindRuleLine
	case dialect.Examples:
		return token.KindExamplesLine
	}
	return token.KindText
}

// matchDocstringFence reports whether trimmed opens/closes a docstring,
// returning the exact fence text and any media type following it.
func matchDocstringFence(trimmed string) (fence, mediaType string, ok bool) {
	for _, f := range []string{`"""`, "```"} {
		if strings.HasPrefix(trimmed, f) {
			return f, strings.TrimSpace(trimmed[len(f):]), true
		}
	}
	return "", "", false
}

// splitTableCells splits a table row on unescaped '|' delimiters,
// unescaping "\|" to "|" and "\\" to "\" within cells, and trims the
// single space conventionally surrounding each cell while preserving
// inner whitespace.
func splitTableCells(trimmed string) []string {
	// trimmed starts with '|'; strip the leading and (if present)
	// trailing pipe before splitting on internal unescaped pipes.
	body := trimmed
	body = strings.TrimPrefix(body, "|")
	body = strings.TrimSuffix(strings.TrimRight(body, " \t"), "|")

	var cells []string
	var cur strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '|':
				cur.WriteRune('|')
				i++
				continue
			case '\\':
				cur.WriteRune('\\')
				i++
				continue
			case 'n':
				cur.WriteRune('\n')
				i++
				continue
			}
		}
		if r == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}
