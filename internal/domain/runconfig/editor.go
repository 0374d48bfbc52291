package runconfig

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Editor message types
const (
	MessageLoad   = "load"
	MessageSave   = "save"
	MessageCancel = "cancel"
)

// EditorMessage is exchanged with the configuration form. "load" carries
// a configuration to the form; "save" carries a DTO back; "cancel" has no
// payload.
type EditorMessage struct {
	Type          string            `json:"type"`
	Configuration *RunConfiguration `json:"configuration,omitempty"`
}

// FormMessage is what the form posts: save with a DTO, or cancel
type FormMessage struct {
	Type          string `json:"type"`
	Configuration *DTO   `json:"configuration,omitempty"`
}

// EditorResult reports what handling a form message did
type EditorResult struct {
	Saved         bool              `json:"saved"`
	Closed        bool              `json:"closed"`
	Configuration *RunConfiguration `json:"configuration,omitempty"`
}

// Editor is the core side of the configuration form. It only loads
// records and persists what the form sends.
type Editor struct {
	store  *Store
	logger *zap.Logger
}

// NewEditor creates an editor bound to store
func NewEditor(store *Store, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{store: store, logger: logger}
}

// Open returns the load message for id, or for an empty form when id is
// empty or unknown.
func (e *Editor) Open(ctx context.Context, id string) (EditorMessage, error) {
	cfg := EmptyTemplate()
	if id != "" {
		found, ok, err := e.store.GetByID(ctx, id)
		if err != nil {
			return EditorMessage{}, err
		}
		if ok {
			cfg = found
		}
	}
	return EditorMessage{Type: MessageLoad, Configuration: &cfg}, nil
}

// Handle processes a message posted by the form
func (e *Editor) Handle(ctx context.Context, msg FormMessage) (EditorResult, error) {
	switch msg.Type {
	case MessageSave:
		var dto DTO
		if msg.Configuration != nil {
			dto = *msg.Configuration
		}
		cfg := New(dto)
		if err := e.store.Save(ctx, cfg); err != nil {
			e.logger.Error("Failed to save configuration", zap.String("name", cfg.Name), zap.Error(err))
			return EditorResult{}, fmt.Errorf("failed to save configuration: %w", err)
		}
		return EditorResult{Saved: true, Closed: true, Configuration: &cfg}, nil
	case MessageCancel:
		return EditorResult{Closed: true}, nil
	default:
		return EditorResult{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}
