// Package app contains the core application logic. It wires the description
// loader, the configurator, the resolver and the observability endpoints
// together behind a small set of operations (plan, order, resolve, clean,
// watch), decoupled from any specific entrypoint like a CLI.
package app
