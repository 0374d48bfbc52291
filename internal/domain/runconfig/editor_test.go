package runconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorOpen(t *testing.T) {
	store, _ := newTestStore()
	editor := NewEditor(store, nil)
	ctx := context.Background()

	msg, err := editor.Open(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, MessageLoad, msg.Type)
	assert.Equal(t, EmptyTemplate(), *msg.Configuration)

	cfg := New(DTO{Name: "Build", Command: "make"})
	require.NoError(t, store.Save(ctx, cfg))

	msg, err = editor.Open(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg, *msg.Configuration)

	msg, err = editor.Open(ctx, "config_missing")
	require.NoError(t, err)
	assert.Equal(t, EmptyTemplate(), *msg.Configuration)
}

func TestEditorSaveNew(t *testing.T) {
	store, _ := newTestStore()
	editor := NewEditor(store, nil)
	ctx := context.Background()

	res, err := editor.Handle(ctx, FormMessage{
		Type:          MessageSave,
		Configuration: &DTO{Name: "Test", Command: "go", Args: "test ./..."},
	})
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.True(t, res.Closed)
	require.NotNil(t, res.Configuration)
	assert.NotEmpty(t, res.Configuration.ID)

	got, ok, err := store.GetByID(ctx, res.Configuration.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test ./...", got.Args)
}

func TestEditorSaveExistingKeepsID(t *testing.T) {
	store, _ := newTestStore()
	editor := NewEditor(store, nil)
	ctx := context.Background()

	cfg := New(DTO{Name: "Old", Command: "x"})
	require.NoError(t, store.Save(ctx, cfg))

	dto := cfg.DTO()
	dto.Name = "New"
	_, err := editor.Handle(ctx, FormMessage{Type: MessageSave, Configuration: &dto})
	require.NoError(t, err)

	configs, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "New", configs[0].Name)
}

func TestEditorCancel(t *testing.T) {
	store, _ := newTestStore()
	editor := NewEditor(store, nil)

	res, err := editor.Handle(context.Background(), FormMessage{Type: MessageCancel})
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.True(t, res.Closed)

	configs, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestEditorUnknownMessage(t *testing.T) {
	store, _ := newTestStore()
	editor := NewEditor(store, nil)

	_, err := editor.Handle(context.Background(), FormMessage{Type: "reset"})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestEditorSaveFailure(t *testing.T) {
	store, backend := newTestStore()
	editor := NewEditor(store, nil)
	boom := errors.New("no space left")
	backend.FailWrites(boom)

	_, err := editor.Handle(context.Background(), FormMessage{Type: MessageSave, Configuration: &DTO{Name: "A"}})
	assert.ErrorIs(t, err, boom)
}
