package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// File stores the settings document in a single workspace file.
//
// Every Update is a read-modify-write of the whole document followed by an
// atomic rename. The last encoded value of every key is remembered so the
// watcher only reports keys that actually changed on disk.
type File struct {
	path   string
	codec  Codec
	logger *zap.Logger

	mu   sync.Mutex
	last map[string][]byte
	subs *subscribers

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// FileOption configures a File store
type FileOption func(*File)

// WithLogger sets the logger used by the store and its watcher
func WithLogger(logger *zap.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFile creates a store for path. The file does not need to exist yet.
func NewFile(path string, opts ...FileOption) (*File, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings path: %w", err)
	}

	f := &File{
		path:   abs,
		codec:  codec,
		logger: zap.NewNop(),
		last:   make(map[string][]byte),
		subs:   newSubscribers(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if doc, err := f.load(); err == nil {
		f.last = snapshot(doc)
	} else {
		f.logger.Warn("Settings file unreadable, starting empty", zap.String("path", f.path), zap.Error(err))
	}

	return f, nil
}

// Path returns the absolute settings file path
func (f *File) Path() string {
	return f.path
}

// Format returns the codec name ("json", "yaml" or "toml")
func (f *File) Format() string {
	return f.codec.Name()
}

// Get decodes key into dst
func (f *File) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.Lock()
	doc, err := f.load()
	f.mu.Unlock()
	if err != nil {
		return false, err
	}

	value, ok := doc[key]
	if !ok {
		return false, nil
	}
	if err := decodeInto(value, dst); err != nil {
		return true, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return true, nil
}

// Update replaces key in the document and notifies subscribers once
func (f *File) Update(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generic, raw, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	f.mu.Lock()
	doc, err := f.load()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	doc[key] = generic

	data, err := f.codec.Marshal(doc)
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("failed to encode settings document: %w", err)
	}
	if err := writeAtomic(f.path, data); err != nil {
		f.mu.Unlock()
		return err
	}
	f.last[key] = raw
	f.mu.Unlock()

	f.logger.Debug("Settings key updated", zap.String("key", key), zap.String("path", f.path))
	f.subs.notify(ChangeEvent{Key: key, Source: SourceLocal})
	return nil
}

// Subscribe registers fn for changes to key
func (f *File) Subscribe(key string, fn func(ChangeEvent)) func() {
	return f.subs.add(key, fn)
}

// Watch starts reporting external edits of the settings file. It returns
// once the watcher is installed; events are handled until ctx is done or
// Close is called.
func (f *File) Watch(ctx context.Context) error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()

	if f.watcher != nil {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	f.watcher = watcher
	f.done = make(chan struct{})
	go f.run(ctx, watcher, f.done)

	f.logger.Info("Watching settings file", zap.String("path", f.path))
	return nil
}

// Close stops the watcher, if any
func (f *File) Close() error {
	f.watchMu.Lock()
	watcher, done := f.watcher, f.done
	f.watcher, f.done = nil, nil
	f.watchMu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

func (f *File) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			f.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("Settings watcher error", zap.Error(err))
		}
	}
}

// reload diffs the document on disk against the last seen values and
// notifies subscribers of every key that differs.
func (f *File) reload() {
	// Truncated by a writer that has not finished yet.
	if info, err := os.Stat(f.path); err == nil && info.Size() == 0 {
		return
	}

	f.mu.Lock()
	doc, err := f.load()
	if err != nil {
		f.mu.Unlock()
		// Partially written by another editor; the next event retries.
		f.logger.Debug("Settings file not readable yet", zap.Error(err))
		return
	}

	current := snapshot(doc)
	var changed []string
	for key, raw := range current {
		if !bytes.Equal(f.last[key], raw) {
			changed = append(changed, key)
		}
	}
	for key := range f.last {
		if _, ok := current[key]; !ok {
			changed = append(changed, key)
		}
	}
	f.last = current
	f.mu.Unlock()

	for _, key := range changed {
		f.logger.Info("Settings key changed externally", zap.String("key", key))
		f.subs.notify(ChangeEvent{Key: key, Source: SourceExternal})
	}
}

// load reads the document. A missing or empty file is an empty document.
func (f *File) load() (map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	doc := map[string]any{}
	if err := f.codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", f.path, err)
	}
	return doc, nil
}

func snapshot(doc map[string]any) map[string][]byte {
	out := make(map[string][]byte, len(doc))
	for key, value := range doc {
		raw, err := jsonAPI.Marshal(value)
		if err != nil {
			continue
		}
		out[key] = raw
	}
	return out
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
