// Package native builds the application's native extension modules for
// the kiln CLI.
//
// Each module lives in a subdirectory of the application checkout and is
// built with `<envPython> -m pip install .` executed with the working
// directory set to the module — the Go process never changes its own
// working directory. Builds run strictly sequentially in the configured
// order; a missing module directory or a failed build aborts the
// pipeline before the launcher runs.
package native
