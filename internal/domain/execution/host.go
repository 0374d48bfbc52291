package execution

import "context"

// Terminal is a live terminal owned by the host
type Terminal interface {
	ID() string
	Name() string
	// Show reveals the terminal; preserveFocus false moves focus to it.
	Show(preserveFocus bool)
	// SendText writes text to the terminal's input, followed by a newline
	// when addNewLine is set.
	SendText(text string, addNewLine bool) error
}

// TerminalOptions describes a terminal to create
type TerminalOptions struct {
	Name string
	// Cwd is the working directory; empty inherits the host's.
	Cwd string
	Env map[string]string
}

// Host creates terminals and reports which are still open
type Host interface {
	CreateTerminal(ctx context.Context, opts TerminalOptions) (Terminal, error)
	// Terminals returns the currently open terminals.
	Terminals() []Terminal
	// OnDidCloseTerminal registers fn for terminal close events.
	OnDidCloseTerminal(fn func(Terminal)) (unsubscribe func())
}

// Workspace exposes the open workspace roots
type Workspace interface {
	Folders() []string
}

// Folders is a fixed set of workspace roots
type Folders []string

// Folders returns the roots, first one first
func (f Folders) Folders() []string {
	return f
}
