// Package conda provides conda environment provisioning for the
// kiln CLI.
//
// All conda operations are performed via os/exec calls to the conda
// binary, rather than driving a library. This approach:
//   - Uses the exact same solver behavior the user sees in their terminal
//   - Works with any conda flavor on PATH (Anaconda, Miniconda, Miniforge)
//   - Avoids reimplementing environment discovery, which conda already
//     exposes as machine-readable JSON (`conda env list --json`)
//
// The Manager struct provides methods for probing the installation,
// checking environment existence, creating environments (from a name +
// interpreter pin or from an environment.yml), and resolving the
// environment's interpreter path. The resolved interpreter path is how
// the rest of the pipeline targets the environment — kiln never relies
// on shell activation state.
package conda
