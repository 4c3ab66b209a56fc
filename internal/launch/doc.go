// Package launch starts the provisioned application for the kiln CLI.
//
// The launcher is the pipeline's terminal step: it invokes the
// application's entry point through the environment's interpreter with
// inherited stdio and blocks until the application exits. kiln's own
// exit status is whatever the application returned — a web UI that the
// operator stops with Ctrl-C ends kiln the same way it would end the
// original shell workflow.
package launch
