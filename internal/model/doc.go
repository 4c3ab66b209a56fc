// Package model defines the domain types and value objects for the
// kiln CLI.
//
// This package contains pure data structures with no external dependencies.
// kiln's real state lives on the filesystem (a conda environment, a git
// checkout, a downloaded model asset), so the entities here describe
// resource identities, presence states, and step outcomes — there are no
// persistent state files of kiln's own.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
