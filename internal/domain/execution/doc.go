// Package execution runs run configurations in host terminals.
//
// The Manager keeps one terminal per configuration id. A cached terminal
// is reused only while the host still lists it as open; otherwise a new
// one named "Run: <name>" is created. Every run focuses the terminal and
// sends "command args" followed by a newline, so a long-running command in
// a reused terminal receives the new line as input.
//
// The manager never kills terminals and never tracks process exit.
package execution
