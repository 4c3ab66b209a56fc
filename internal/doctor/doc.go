// Package doctor implements preflight checks for the kiln CLI.
//
// The checks answer "will `kiln up` get anywhere on this machine?"
// without mutating anything: prerequisite tools on PATH, a loadable
// configuration, and writable destinations. Each check yields a Result
// with a status, a message, and — for failures — a recommendation the
// operator can act on.
package doctor
