// Package doubles provides test doubles for the userstore observability interfaces.
//
// The spies capture logging and metrics calls so tests can assert on the
// instrumentation emitted by user store operations without wiring a real
// logging or metrics backend.
package doubles
