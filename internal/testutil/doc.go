// Package testutil provides fluent builders and stubs shared by tests across
// the repository. It is internal and carries no compatibility guarantees.
package testutil
