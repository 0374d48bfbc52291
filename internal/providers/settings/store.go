package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/bytedance/sonic"
)

// ErrUnsupportedFormat is returned for settings files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// Change sources
const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// ChangeEvent describes a modified settings key.
type ChangeEvent struct {
	Key    string `json:"key"`
	Source string `json:"source"`
}

// Store is a workspace-scoped key/value settings document.
//
// Get decodes the value stored under key into dst and reports whether the
// key exists. Update replaces the whole value under key in one write.
// Subscribe registers fn for changes to key; the returned func removes it.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Update(ctx context.Context, key string, value any) error
	Subscribe(key string, fn func(ChangeEvent)) (unsubscribe func())
}

// jsonAPI sorts map keys so encoded values compare byte-for-byte.
var jsonAPI = sonic.ConfigStd

// subscribers is a per-key observer list. Callbacks run outside the lock.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	byKey  map[string]map[int]func(ChangeEvent)
}

func newSubscribers() *subscribers {
	return &subscribers{byKey: make(map[string]map[int]func(ChangeEvent))}
}

func (s *subscribers) add(key string, fn func(ChangeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[int]func(ChangeEvent))
	}
	s.byKey[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.byKey[key], id)
			if len(s.byKey[key]) == 0 {
				delete(s.byKey, key)
			}
		})
	}
}

func (s *subscribers) notify(event ChangeEvent) {
	s.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.byKey[event.Key]))
	for _, fn := range s.byKey[event.Key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// decodeInto round-trips a generic value into dst through JSON.
func decodeInto(value any, dst any) error {
	raw, err := jsonAPI.Marshal(value)
	if err != nil {
		return err
	}
	return jsonAPI.Unmarshal(raw, dst)
}

// normalize converts value into plain maps, slices and scalars.
func normalize(value any) (any, []byte, error) {
	raw, err := jsonAPI.Marshal(value)
	if err != nil {
		return nil, nil, err
	}
	var generic any
	if err := jsonAPI.Unmarshal(raw, &generic); err != nil {
		return nil, nil, err
	}
	// Same bytes snapshot produces for the decoded document.
	canonical, err := jsonAPI.Marshal(generic)
	if err != nil {
		return nil, nil, err
	}
	return generic, canonical, nil
}
