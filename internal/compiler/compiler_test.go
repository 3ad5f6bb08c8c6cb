package compiler

import (
	"testing"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestValidate_Defaults(t *testing.T) {
	opts, err := Validate(nil, Policy{})
	require.NoError(t, err)
	assert.Equal(t, Options{JVMTarget: "11", Incremental: false}, opts)
}

func TestValidate_Declared(t *testing.T) {
	opts, err := Validate(&config.Compiler{
		JVMTarget:   "17",
		Incremental: boolPtr(false),
		Flags:       map[string]string{"allWarningsAsErrors": "true"},
	}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, "17", opts.JVMTarget)
	assert.False(t, opts.Incremental)
	assert.Equal(t, map[string]string{"allWarningsAsErrors": "true"}, opts.Flags)
}

func TestValidate_UnsupportedTarget(t *testing.T) {
	for _, target := range []string{"1.7", "8", "22", "eleven"} {
		_, err := Validate(&config.Compiler{JVMTarget: target}, Policy{})
		assert.ErrorIs(t, err, builderr.ErrConfiguration, target)
		assert.ErrorContains(t, err, "unsupported jvm target")
	}
}

func TestValidate_EmptyFlagName(t *testing.T) {
	_, err := Validate(&config.Compiler{Flags: map[string]string{"": "x"}}, Policy{})
	assert.ErrorIs(t, err, builderr.ErrConfiguration)
}

func TestPolicy_Incremental(t *testing.T) {
	testCases := []struct {
		name     string
		override *bool
		declared *bool
		want     bool
	}{
		{"unset stays disabled", nil, nil, false},
		{"declaration enables", nil, boolPtr(true), true},
		{"override wins over declaration", boolPtr(false), boolPtr(true), false},
		{"override enables", boolPtr(true), nil, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Policy{Override: tc.override}.Incremental(tc.declared))
		})
	}
}

func TestOptions_CloneIsIndependent(t *testing.T) {
	a := Options{JVMTarget: "11", Flags: map[string]string{"k": "v"}}
	b := a.Clone()
	b.Flags["k"] = "changed"

	assert.Equal(t, "v", a.Flags["k"])
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.Clone()))
}

func TestSupportedJVMTargets(t *testing.T) {
	assert.Equal(t, "1.8", SupportedJVMTargets[0])
	assert.Equal(t, "21", SupportedJVMTargets[len(SupportedJVMTargets)-1])
	assert.Contains(t, SupportedJVMTargets, "11")
	assert.Len(t, SupportedJVMTargets, 14)
}
