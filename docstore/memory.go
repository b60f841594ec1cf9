package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and by STORE_DRIVER=memory.
type Memory struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(ctx context.Context, path string, dst any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	raw, ok := m.docs[path]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, path string, value any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	m.mu.Lock()
	m.docs[path] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	merged, err := mergeFields(m.docs[path], fields)
	if err != nil {
		return err
	}
	m.docs[path] = merged
	return nil
}

func (m *Memory) Remove(ctx context.Context, path string) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := path + "/"
	for p := range m.docs {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.docs, p)
		}
	}
	return nil
}

func (m *Memory) Children(ctx context.Context, path string) ([]Document, error) {
	if _, _, err := splitPath(path); err != nil {
		return nil, err
	}
	prefix := path + "/"
	m.mu.Lock()
	docs := make([]Document, 0)
	for p, raw := range m.docs {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		docs = append(docs, Document{Key: rest, Path: p, Data: append(json.RawMessage(nil), raw...)})
	}
	m.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

// Transact holds the store lock while fn runs, so concurrent transactions on
// any path are applied one after another.
func (m *Memory) Transact(ctx context.Context, path string, fn TxFunc) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var current json.RawMessage
	if raw, ok := m.docs[path]; ok {
		current = append(json.RawMessage(nil), raw...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	m.docs[path] = raw
	return nil
}
