// Package compiler holds the option set applied uniformly to every
// compilation task of every subproject.
package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
)

// DefaultJVMTarget is used when the description does not set jvm_target.
const DefaultJVMTarget = "11"

// SupportedJVMTargets lists the bytecode targets the Kotlin compiler accepts.
var SupportedJVMTargets = func() []string {
	targets := []string{"1.8"}
	for v := 9; v <= 21; v++ {
		targets = append(targets, strconv.Itoa(v))
	}
	return targets
}()

// Policy decides whether incremental compilation is enabled. The zero value
// keeps it disabled.
type Policy struct {
	// Override, when set, wins over the description.
	Override *bool
}

// Incremental resolves the effective flag from the declared value.
func (p Policy) Incremental(declared *bool) bool {
	if p.Override != nil {
		return *p.Override
	}
	if declared != nil {
		return *declared
	}
	return false
}

// Options is the immutable compiler configuration of a plan.
type Options struct {
	JVMTarget   string            `json:"jvm_target" yaml:"jvm_target"`
	Incremental bool              `json:"incremental" yaml:"incremental"`
	Flags       map[string]string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Equal reports whether two option sets are identical.
func (o Options) Equal(other Options) bool {
	return o.JVMTarget == other.JVMTarget &&
		o.Incremental == other.Incremental &&
		maps.Equal(o.Flags, other.Flags)
}

// Clone returns a copy that shares no state with o.
func (o Options) Clone() Options {
	o.Flags = maps.Clone(o.Flags)
	return o
}

// Validate checks the declared options and produces the effective set. A nil
// declaration yields the defaults.
func Validate(decl *config.Compiler, policy Policy) (Options, error) {
	const op = "compiler-options"
	opts := Options{JVMTarget: DefaultJVMTarget}
	var declared *bool

	if decl != nil {
		if decl.JVMTarget != "" {
			opts.JVMTarget = decl.JVMTarget
		}
		declared = decl.Incremental
		opts.Flags = maps.Clone(decl.Flags)
		for k := range opts.Flags {
			if k == "" {
				return Options{}, builderr.Configurationf(op, "flags", "compiler flag with an empty name")
			}
		}
	}

	if !slices.Contains(SupportedJVMTargets, opts.JVMTarget) {
		return Options{}, builderr.Configuration(op, "jvm_target",
			fmt.Errorf("unsupported jvm target %q (supported: %v)", opts.JVMTarget, SupportedJVMTargets))
	}

	opts.Incremental = policy.Incremental(declared)
	return opts, nil
}
