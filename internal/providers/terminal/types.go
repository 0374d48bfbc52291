package terminal

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown terminal ids
	ErrSessionNotFound = errors.New("terminal session not found")

	// ErrSessionClosed is returned when writing to an exited terminal
	ErrSessionClosed = errors.New("terminal session is closed")
)

// Session is one shell running in a PTY. It implements execution.Terminal.
type Session struct {
	id         string
	name       string
	shell      string
	workingDir string
	startedAt  time.Time

	host *Host

	// Process management
	cmd  *exec.Cmd
	ptmx *os.File

	// Output buffering
	output *Buffer

	// Lifecycle
	mu         sync.RWMutex
	cols       int
	rows       int
	closed     bool
	readerDone chan struct{}
	done       chan struct{}
	finishOnce sync.Once
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Shell      string    `json:"shell"`
	WorkingDir string    `json:"working_dir"`
	Cols       int       `json:"cols"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	Active     bool      `json:"active"`
	Focused    bool      `json:"focused"`
}

// Buffer is a thread-safe circular buffer for terminal output. When full,
// the oldest bytes are dropped.
type Buffer struct {
	data []byte
	size int
	head int
	tail int
	mu   sync.Mutex
}

// NewBuffer creates a buffer holding up to size-1 bytes
func NewBuffer(size int) *Buffer {
	if size < 2 {
		size = 2
	}
	return &Buffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write writes data to the buffer
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range p {
		b.data[b.tail] = c
		b.tail = (b.tail + 1) % b.size

		if b.tail == b.head {
			b.head = (b.head + 1) % b.size
		}
	}

	return len(p), nil
}

// Len returns the number of unread bytes
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return (b.tail - b.head + b.size) % b.size
}

// ReadAll drains all buffered data
func (b *Buffer) ReadAll() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.head == b.tail {
		return []byte{}
	}

	var result []byte
	if b.tail > b.head {
		result = make([]byte, b.tail-b.head)
		copy(result, b.data[b.head:b.tail])
	} else {
		first := b.data[b.head:]
		second := b.data[:b.tail]
		result = make([]byte, len(first)+len(second))
		copy(result, first)
		copy(result[len(first):], second)
	}

	b.head = b.tail
	return result
}
