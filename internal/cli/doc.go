// Package cli defines the buildplan command tree. It owns flag parsing and
// validation, turns the shared flags into an app.Config, and maps failures to
// process exit codes through ExitError.
package cli
