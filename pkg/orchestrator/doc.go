// Package orchestrator imports a remote form into a local form builder.
//
// An import walks a fixed sequence of states:
//
//	Validating -> CheckingLink -> Fetching -> Compiling -> CheckingDuplicate -> Creating -> Linked
//
// Any state may end in Failed. Validation and fetch failures happen before
// anything is written. A duplicate or an existing import link stops the
// import without creating anything and is reported as an outcome, not an
// error. Nothing is retried here; retry policy belongs to the caller.
package orchestrator
