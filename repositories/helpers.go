package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/forza-race-organizer/docstore"
)

func getDocument(ctx context.Context, store docstore.Store, path string, dst any, notFoundError error) error {
	if err := store.Get(ctx, path, dst); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return notFoundError
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// listDocuments decodes every direct child of root. A child that does not decode
// is reported through onBad and skipped, so one corrupt record does not hide the rest.
func listDocuments[T any](ctx context.Context, store docstore.Store, root string, onBad func(doc docstore.Document, err error)) ([]*T, []string, error) {
	docs, err := store.Children(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	items := make([]*T, 0, len(docs))
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		item := new(T)
		if err := doc.Decode(item); err != nil {
			if onBad != nil {
				onBad(doc, err)
			}
			continue
		}
		items = append(items, item)
		keys = append(keys, doc.Key)
	}
	return items, keys, nil
}

// mutateDocument runs fn on the decoded document at path inside a store transaction.
// An absent document fails with notFoundError.
func mutateDocument[T any](ctx context.Context, store docstore.Store, path string, notFoundError error, fn func(doc *T) error) (*T, error) {
	var doc *T
	err := store.Transact(ctx, path, func(current json.RawMessage) (any, error) {
		if len(current) == 0 || string(current) == "null" {
			return nil, notFoundError
		}
		doc = new(T)
		if err := json.Unmarshal(current, doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if err := fn(doc); err != nil {
			return nil, err
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// insertDocument stores value at path only when nothing is there yet.
func insertDocument(ctx context.Context, store docstore.Store, path string, value any, conflictError error) error {
	return store.Transact(ctx, path, func(current json.RawMessage) (any, error) {
		if len(current) > 0 && string(current) != "null" {
			return nil, conflictError
		}
		return value, nil
	})
}
