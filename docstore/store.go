package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

// TxFunc receives the current value at a path (nil when absent) and returns the
// value to store. Returning a nil value leaves the document untouched; returning
// an error aborts the transaction and is passed back to the caller of Transact.
type TxFunc func(current json.RawMessage) (any, error)

// Store is a hierarchical JSON document tree addressed by slash separated paths.
type Store interface {
	Get(ctx context.Context, path string, dst any) error
	Set(ctx context.Context, path string, value any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Remove(ctx context.Context, path string) error
	Children(ctx context.Context, path string) ([]Document, error)
	Transact(ctx context.Context, path string, fn TxFunc) error
}

// Document is one child node returned by Children.
type Document struct {
	Key  string
	Path string
	Data json.RawMessage
}

func (d Document) Decode(dst any) error {
	if err := json.Unmarshal(d.Data, dst); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.Path, err)
	}
	return nil
}

// Join builds a path from segments and validates every segment.
func Join(segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", ErrInvalidPath
	}
	for _, s := range segments {
		if err := validateSegment(s); err != nil {
			return "", err
		}
	}
	return strings.Join(segments, "/"), nil
}

// MustJoin is Join for constant segments.
func MustJoin(segments ...string) string {
	p, err := Join(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

func validateSegment(s string) error {
	switch {
	case s == "", s == ".", s == "..":
		return fmt.Errorf("%w: segment %q", ErrInvalidPath, s)
	case strings.ContainsAny(s, "/#$[]"):
		return fmt.Errorf("%w: segment %q contains a reserved character", ErrInvalidPath, s)
	}
	return nil
}

// splitPath validates a full path and returns its parent and last key.
func splitPath(path string) (parent, key string, err error) {
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if err := validateSegment(s); err != nil {
			return "", "", err
		}
	}
	key = segments[len(segments)-1]
	parent = strings.Join(segments[:len(segments)-1], "/")
	return parent, key, nil
}

func mergeFields(current json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if len(current) > 0 && string(current) != "null" {
		if err := json.Unmarshal(current, &merged); err != nil {
			return nil, fmt.Errorf("update target is not an object: %w", err)
		}
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
