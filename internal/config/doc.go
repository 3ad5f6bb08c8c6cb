// Package config defines the format-agnostic model of a build description,
// along with the Loader interface implemented by concrete formats.
//
// A Description is plain data: strings already evaluated, blocks flattened
// into slices in declaration order. It is the single input of the
// configurator in package plan. Concrete implementations of Loader, such as
// the HCL one, live in separate packages.
package config
