package terminal

import (
	"fmt"
)

// ID returns the terminal id ("term_<ULID>")
func (s *Session) ID() string {
	return s.id
}

// Name returns the terminal title
func (s *Session) Name() string {
	return s.name
}

// Show reveals the terminal. Unless preserveFocus is set it also becomes
// the focused terminal.
func (s *Session) Show(preserveFocus bool) {
	s.host.show(s, preserveFocus)
}

// SendText writes text to the shell's input. A carriage return is
// appended when addNewLine is set, as typing Enter would.
func (s *Session) SendText(text string, addNewLine bool) error {
	if addNewLine {
		text += "\r"
	}
	return s.write([]byte(text))
}

func (s *Session) write(p []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.id)
	}
	if _, err := s.ptmx.Write(p); err != nil {
		return fmt.Errorf("failed to write to terminal %s: %w", s.id, err)
	}
	return nil
}

// Active reports whether the shell is still running
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Done is closed once the shell has exited and the PTY is released
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) info(focused bool) SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionInfo{
		ID:         s.id,
		Name:       s.name,
		Shell:      s.shell,
		WorkingDir: s.workingDir,
		Cols:       s.cols,
		Rows:       s.rows,
		StartedAt:  s.startedAt,
		Active:     !s.closed,
		Focused:    focused,
	}
}
