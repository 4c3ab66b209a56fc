// Package gitrepo provides the git checkout provisioning for the
// kiln CLI.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Respects the user's existing credential and proxy configuration,
//     which matters for cloning over HTTPS in restricted networks
//
// The Fetcher provides exactly one mutation: clone-if-absent. An
// existing checkout is never updated or refreshed — re-running the
// pipeline skips the clone entirely.
package gitrepo
