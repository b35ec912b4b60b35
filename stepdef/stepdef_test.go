package stepdef_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/stepdef"
)

func TestRegister_AssignsDeterministicID(t *testing.T) {
	r := stepdef.NewRegistry()
	reg, err := r.Register(`I type "([^"]+)"`, func(s string) {}, nil, location.Zero)
	require.NoError(t, err)
	assert.Regexp(t, `^sd-[0-9a-f]{16}$`, reg.ID)
	assert.Equal(t, 1, reg.Arity)
}

func TestRegister_DuplicatePatternErrorType(t *testing.T) {
	r := stepdef.NewRegistry()
	_, _ = r.Register("dup", func() {}, nil, location.Location{Line: 1})
	_, err := r.Register("dup", func() {}, nil, location.Location{Line: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry/duplicate")
}

func TestRegister_VariadicRejected(t *testing.T) {
	r := stepdef.NewRegistry()
	_, err := r.Register("variadic", func(xs ...string) {}, nil, location.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry/variadic_rejected")
}

func TestRegister_InvalidRegexWrapped(t *testing.T) {
	r := stepdef.NewRegistry()
	_, err := r.Register("(unterminated", func() {}, nil, location.Zero)
	require.Error(t, err)
}

func TestSnapshot_PreservesRegistrationOrder(t *testing.T) {
	r := stepdef.NewRegistry()
	_, _ = r.Register("first", func() {}, nil, location.Zero)
	_, _ = r.Register("second", func() {}, nil, location.Zero)
	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "first", snap[0].PatternSrc)
	assert.Equal(t, "second", snap[1].PatternSrc)
}

func TestClear_ResetsRegistry(t *testing.T) {
	r := stepdef.NewRegistry()
	_, _ = r.Register("x", func() {}, nil, location.Zero)
	r.Clear()
	assert.Empty(t, r.Snapshot())
	_, err := r.Register("x", func() {}, nil, location.Zero)
	assert.NoError(t, err)
}

func TestRegister_ArityReflectsDeclaredParams(t *testing.T) {
	r := stepdef.NewRegistry()
	reg, err := r.Register("three", func(a, b, c string) {}, nil, location.Zero)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Arity)
}
