// Package location implements source-position tracking for Gherkin
// documents: UTF-8 validation and line/column accounting that recognizes
// LF, CRLF, and bare CR end-of-line sequences.
package location

import (
	"unicode/utf8"
)

// Location identifies a single point in source text. Line is 1-based;
// Column is 0-based, counted in runes from the start of the line.
type Location struct {
	Line   int
	Column int
}

// Zero is the file-level location used for errors that have no more
// specific position (e.g. a UTF-8 decode failure at an unknown offset).
var Zero = Location{Line: 1, Column: 0}

// Before reports whether l precedes other in document order.
func (l Location) Before(other Location) bool {
	if l.Line != other.Line {
		return l.Line < other.Line
	}
	return l.Column < other.Column
}

// String renders "line:column" for diagnostics.
func (l Location) String() string {
	return itoa(l.Line) + ":" + itoa(l.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// DecodeError reports that input was not valid UTF-8.
type DecodeError struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (e *DecodeError) Error() string {
	return "io/utf8_decode_failed: invalid UTF-8 at byte offset " + itoa(e.Offset)
}

// Validate checks that input is well-formed UTF-8. A leading UTF-8
// byte-order mark is not supported: it is never stripped, and its
// presence is rejected with a DecodeError at offset 0.
func Validate(input string) error {
	if len(input) >= 3 && input[:3] == "\xef\xbb\xbf" {
		return &DecodeError{Offset: 0}
	}
	if utf8.ValidString(input) {
		return nil
	}
	// Find the first invalid byte offset for a precise diagnostic.
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == utf8.RuneError && size <= 1 {
			return &DecodeError{Offset: i}
		}
		i += size
	}
	return &DecodeError{Offset: 0}
}

// Line is one physical line of source, split from the original input
// with its end-of-line sequence identified but not stripped: Content
// plus EOL reconstitutes the original bytes for that line exactly.
type Line struct {
	// Number is the 1-based line number.
	Number int
	// Content is the line's text, excluding the EOL sequence.
	Content string
	// EOL is "", "\n", "\r\n", or "\r" — empty only for a final line
	// with no trailing terminator.
	EOL string
}

// Raw returns Content+EOL, i.e. the exact original bytes of this line.
func (l Line) Raw() string {
	return l.Content + l.EOL
}

// SplitLines splits input into physical lines, recognizing LF, CRLF, and
// bare CR as line terminators. Each terminator — regardless of style —
// advances the line counter by exactly one, matching the spec's EOL
// accounting rule. Concatenating Raw() over the result reproduces input
// byte-for-byte.
func SplitLines(input string) []Line {
	var lines []Line
	start := 0
	n := len(input)
	lineNo := 1
	for i := 0; i < n; {
		c := input[i]
		if c == '\n' {
			lines = append(lines, Line{Number: lineNo, Content: input[start:i], EOL: "\n"})
			i++
			start = i
			lineNo++
			continue
		}
		if c == '\r' {
			if i+1 < n && input[i+1] == '\n' {
				lines = append(lines, Line{Number: lineNo, Content: input[start:i], EOL: "\r\n"})
				i += 2
			} else {
				lines = append(lines, Line{Number: lineNo, Content: input[start:i], EOL: "\r"})
				i++
			}
			start = i
			lineNo++
			continue
		}
		i++
	}
	if start < n {
		lines = append(lines, Line{Number: lineNo, Content: input[start:], EOL: ""})
	}
	return lines
}
