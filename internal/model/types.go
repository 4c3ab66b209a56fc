package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ResourceState represents the presence of a provisioned resource on the
// local machine. Every guarded pipeline step checks its resource's state
// before acting:
//
//	absent  → the step's creation action runs exactly once
//	present → the step is skipped entirely
//
// Resources are created once and never mutated or destroyed by kiln, so
// there are no intermediate lifecycle states.
type ResourceState string

const (
	// StateAbsent indicates the resource does not exist yet and the
	// owning step must create it.
	StateAbsent ResourceState = "absent"

	// StatePresent indicates the resource already exists and the owning
	// step must skip its creation action.
	StatePresent ResourceState = "present"
)

// String returns the string representation of ResourceState.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s ResourceState) String() string {
	return string(s)
}

// IsValid checks whether the ResourceState value is one of the
// predefined valid states.
func (s ResourceState) IsValid() bool {
	switch s {
	case StateAbsent, StatePresent:
		return true
	default:
		return false
	}
}

// ParseResourceState converts a string to a ResourceState.
// Returns an error if the string does not match any valid state.
func ParseResourceState(s string) (ResourceState, error) {
	state := ResourceState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid resource state: %q (valid: absent, present)", s)
	}
	return state, nil
}

// StepAction describes what a pipeline step actually did when it ran.
// Guarded steps report Created or Skipped depending on their resource's
// prior state; unguarded steps (dependency install, native builds, the
// launcher) always report Ran.
type StepAction string

const (
	// ActionCreated indicates the step's resource was absent and the
	// step created it.
	ActionCreated StepAction = "created"

	// ActionSkipped indicates the step's resource was already present
	// and the creation action did not run.
	ActionSkipped StepAction = "skipped"

	// ActionRan indicates the step has no existence guard and its
	// action was executed.
	ActionRan StepAction = "ran"
)

// String returns the string representation of StepAction.
func (a StepAction) String() string {
	return string(a)
}

// IsValid checks whether the StepAction value is one of the
// predefined valid actions.
func (a StepAction) IsValid() bool {
	switch a {
	case ActionCreated, ActionSkipped, ActionRan:
		return true
	default:
		return false
	}
}

// StepReport records the outcome of a single pipeline step. The runner
// collects one report per executed step; the slice of reports is what
// the up command renders as text or JSON.
type StepReport struct {
	// Step is the step's stable identifier (e.g., "environment", "checkout").
	Step string `json:"step"`

	// Resource is a human-readable description of the resource the step
	// manages (e.g., the environment name or the checkout path).
	Resource string `json:"resource"`

	// Action records what the step did: created, skipped, or ran.
	Action StepAction `json:"action"`

	// Warnings holds non-fatal messages produced by the step, such as
	// the missing-manifest soft-skip from the dependency installer.
	Warnings []string `json:"warnings,omitempty"`
}

// envNameRegex validates environment names: alphanumeric, hyphens, and
// underscores only, starting with an alphanumeric character. This matches
// what conda itself accepts without quoting headaches.
var envNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidateEnvName checks if the given name is a valid conda environment name.
func ValidateEnvName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if !envNameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: must contain only alphanumeric characters, hyphens, and underscores, and start with an alphanumeric character", name)
	}
	return nil
}

// pythonVersionRegex validates interpreter version pins such as "3.10"
// or "3.10.14". A bare major version is rejected: conda would resolve it
// to whatever is newest, which defeats the point of a pin.
var pythonVersionRegex = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// ValidatePythonVersion checks if the given string is a usable Python
// version pin for environment creation.
func ValidatePythonVersion(version string) error {
	if version == "" {
		return fmt.Errorf("python version must not be empty")
	}
	if !pythonVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid python version %q: expected MAJOR.MINOR or MAJOR.MINOR.PATCH (e.g., 3.10)", version)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine which subsystem failed. Every
// abort is non-zero; the launcher additionally passes the launched
// application's own exit code through unchanged.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitCondaNotFound indicates the conda binary is not on PATH or the
	// environment could not be created or inspected.
	ExitCondaNotFound ExitCode = 2

	// ExitGitError indicates a Git operation (clone, inspection) failed.
	ExitGitError ExitCode = 3

	// ExitDownloadFailed indicates the model asset download failed.
	ExitDownloadFailed ExitCode = 4

	// ExitInstallFailed indicates a pip package installation failed.
	ExitInstallFailed ExitCode = 5

	// ExitBuildFailed indicates a native extension module is missing or
	// its build failed.
	ExitBuildFailed ExitCode = 6

	// ExitLaunchFailed indicates the application entry point could not
	// be started at all (as opposed to the application itself exiting
	// non-zero, whose code is propagated as-is).
	ExitLaunchFailed ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
