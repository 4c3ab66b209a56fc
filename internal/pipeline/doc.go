// Package pipeline implements kiln's provisioning pipeline: an ordered,
// fail-fast chain of steps that takes a machine from nothing to a
// launched application.
//
// The fixed order is:
//
//	environment → checkout → model asset → dependencies → native modules → launch
//
// Each step receives a State record carrying the loaded configuration
// and, once the environment step has run, the resolved interpreter path.
// Passing the interpreter explicitly avoids any reliance on shell
// activation state.
//
// The Runner executes steps strictly sequentially and short-circuits on
// the first failure. There are no retries and no rollback: a failed run
// leaves whatever it finished behind, and the next run's existence
// checks resume from there. Guarded steps (environment, checkout, model
// asset) report whether they created their resource or skipped it;
// re-running a completed pipeline skips every guarded step.
package pipeline
