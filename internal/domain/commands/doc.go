// Package commands exposes the actions a user can invoke on run
// configurations. Deletion is two-step: the first call returns a
// ConfirmationError with the prompt, the second passes confirmed=true.
package commands
