// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, evaluation of
// `extra` references and translation into the format-agnostic description.
//
// A description is read in two passes. The first pass collects every
// `extra` block from every file; their attributes become the `extra`
// variable of the evaluation context used to decode everything else in the
// second pass, so a plugin can write `version = extra.kotlin_version`.
package hcl
