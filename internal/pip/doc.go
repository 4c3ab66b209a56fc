// Package pip installs Python packages into the provisioned conda
// environment for the kiln CLI.
//
// Installs run as `<envPython> -m pip ...` where envPython is the
// environment's resolved interpreter path. Targeting pip through the
// interpreter removes any dependency on shell activation: packages land
// in the right environment no matter what the parent process's
// environment looks like.
//
// Two install operations exist: the pinned package set from a dedicated
// wheel index (the PyTorch triple), and the application's dependency
// manifest. A missing manifest is a soft condition — the installer
// reports it and the pipeline continues — while every other failure is
// fatal. Idempotency of repeated installs is pip's own concern; kiln
// just re-invokes it.
package pip
