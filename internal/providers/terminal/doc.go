// Package terminal hosts interactive shells in pseudo-terminals.
//
// Host implements execution.Host: each CreateTerminal spawns the configured
// shell under creack/pty with the requested working directory and extra
// environment. Output is kept in a per-session ring Buffer that clients
// drain with Read. When a shell exits, or is killed, the session leaves the
// live set returned by Terminals and close listeners are called.
//
// Example Usage:
//
//	host := terminal.NewHost(terminal.Config{Shell: "/bin/bash"}, terminal.WithLogger(logger))
//	term, err := host.CreateTerminal(ctx, execution.TerminalOptions{Name: "Run: Build", Cwd: "/srv/app"})
//	term.Show(false)
//	err = term.SendText("make", true)
//	out, err := host.Read(term.ID())
//	err = host.Kill(term.ID())
package terminal
