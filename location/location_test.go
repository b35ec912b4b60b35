package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
)

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	err := location.Validate("hello \xff world")
	require.Error(t, err)
	var decodeErr *location.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 6, decodeErr.Offset)
}

func TestValidate_AcceptsValidUTF8(t *testing.T) {
	assert.NoError(t, location.Validate("Feature: café\n  日本語\n"))
}

func TestSplitLines_PreservesEOLStyles(t *testing.T) {
	input := "a\nb\r\nc\rd"
	lines := location.SplitLines(input)
	require.Len(t, lines, 4)

	assert.Equal(t, location.Line{Number: 1, Content: "a", EOL: "\n"}, lines[0])
	assert.Equal(t, location.Line{Number: 2, Content: "b", EOL: "\r\n"}, lines[1])
	assert.Equal(t, location.Line{Number: 3, Content: "c", EOL: "\r"}, lines[2])
	assert.Equal(t, location.Line{Number: 4, Content: "d", EOL: ""}, lines[3])

	var roundtrip string
	for _, l := range lines {
		roundtrip += l.Raw()
	}
	assert.Equal(t, input, roundtrip)
}

func TestSplitLines_EachEOLAdvancesLineByOne(t *testing.T) {
	for _, input := range []string{"a\nb\nc", "a\r\nb\r\nc", "a\rb\rc"} {
		lines := location.SplitLines(input)
		require.Len(t, lines, 3)
		assert.Equal(t, 1, lines[0].Number)
		assert.Equal(t, 2, lines[1].Number)
		assert.Equal(t, 3, lines[2].Number)
	}
}

func TestSplitLines_EmptyInput(t *testing.T) {
	assert.Empty(t, location.SplitLines(""))
}

func TestSplitLines_TrailingNewlineHasNoFinalEmptyLine(t *testing.T) {
	lines := location.SplitLines("a\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].Content)
}

func TestLocationBefore(t *testing.T) {
	a := location.Location{Line: 1, Column: 5}
	b := location.Location{Line: 1, Column: 6}
	c := location.Location{Line: 2, Column: 0}
	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, c.Before(a))
}
