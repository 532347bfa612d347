package chain

import "fmt"

// DuplicateStepKeyError reports an attempt to add a step whose key is already
// present in the chain.
type DuplicateStepKeyError struct {
	Key string
}

// Error implements the error interface.
func (e *DuplicateStepKeyError) Error() string {
	return fmt.Sprintf("chain: duplicate step key %q", e.Key)
}

// CycleError reports a dependency cycle in the step reference graph. Members
// holds the keys of the steps participating in (or downstream of) the cycle.
type CycleError struct {
	Members []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("chain: dependency cycle involving steps %v", e.Members)
}

// UnresolvedRefError reports a step argument referencing a binding that no
// step produces and no chain input seeds.
type UnresolvedRefError struct {
	StepKey string
	Ref     string
}

// Error implements the error interface.
func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("chain: step %q references unresolved binding %q", e.StepKey, e.Ref)
}

// StepError wraps a failure raised by a step's callable together with the
// identity of the failing step. The engine never lets a raw, unattributed
// callable failure escape a chain invocation.
type StepError struct {
	StepKey string
	Err     error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("chain: step %q failed: %v", e.StepKey, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *StepError) Unwrap() error { return e.Err }

// StepTimeoutError reports a step exceeding its configured timeout. The
// processing strategy treats it like any other step failure.
type StepTimeoutError struct {
	StepKey string
	Timeout string
}

// Error implements the error interface.
func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("chain: step %q timed out after %s", e.StepKey, e.Timeout)
}

// SerializationFormatError reports an unsupported or corrupt chain/swarm
// export format.
type SerializationFormatError struct {
	Format string
	Reason string
}

// Error implements the error interface.
func (e *SerializationFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("chain: unsupported serialization format %q", e.Format)
	}
	return fmt.Sprintf("chain: serialization format %q: %s", e.Format, e.Reason)
}

// UnknownOutputError reports a designated output binding that no step
// publishes and no invocation input seeds. Detected before any step
// executes, never after a run has silently produced nothing.
type UnknownOutputError struct {
	ChainKey string
	Output   string
}

// Error implements the error interface.
func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("chain: chain %q output binding %q is never published", e.ChainKey, e.Output)
}

// UnknownCallableError reports a step definition naming a callable the
// factory's resolver cannot supply. Detected at build/load time, never at
// execution.
type UnknownCallableError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownCallableError) Error() string {
	return fmt.Sprintf("chain: callable %q is not registered", e.Name)
}

// UnknownChainError reports a factory lookup for a chain key that has not
// been built or loaded.
type UnknownChainError struct {
	Key string
}

// Error implements the error interface.
func (e *UnknownChainError) Error() string {
	return fmt.Sprintf("chain: unknown chain %q", e.Key)
}

// UnknownStepError reports a factory mutation addressing a step key not
// present in the target chain.
type UnknownStepError struct {
	ChainKey string
	StepKey  string
}

// Error implements the error interface.
func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("chain: chain %q has no step %q", e.ChainKey, e.StepKey)
}
