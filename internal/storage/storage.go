// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists assembled documents to an object store under
// deterministic, collision-resistant keys.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultKeyPrefix is used when no prefix is configured.
const DefaultKeyPrefix = "articles"

// ObjectStore is the minimal write surface the pipeline needs. There is no
// read path.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Error is a persistence failure. The writer never retries; retry policy
// belongs to the caller.
type Error struct {
	// Key is the storage key the write targeted.
	Key string

	// Err is the underlying store failure.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storing %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Writer persists final documents. The clock is a field so tests can pin
// the timestamp component of generated keys.
type Writer struct {
	Store  ObjectStore
	Prefix string

	// Now returns the creation timestamp used in keys. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// NewWriter builds a Writer over store with the given key prefix.
func NewWriter(store ObjectStore, prefix string) *Writer {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Writer{Store: store, Prefix: prefix}
}

// Persist writes content under a key derived from the creation time and
// the request identifier, and returns that key. The write is a single
// operation; on failure a *Error is returned and nothing is retried.
func (w *Writer) Persist(ctx context.Context, content string, req *types.ContentRequest) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	key := Key(w.Prefix, now().UTC(), req.RequestID)
	if err := w.Store.Put(ctx, key, []byte(content)); err != nil {
		return "", &Error{Key: key, Err: err}
	}
	return key, nil
}

// Key derives the storage key for a document. The request ID alone makes
// the key unique; the timestamp prefix exists so listings sort by creation
// time. Two requests persisted within the same second still get distinct
// keys because their request IDs differ.
func Key(prefix string, t time.Time, requestID string) string {
	return fmt.Sprintf("%s/%s-%s.md", prefix, t.Format("20060102-150405"), requestID)
}

// FileStore is an ObjectStore backed by a directory tree: keys become
// relative file paths under Root.
type FileStore struct {
	Root string
}

// Put atomically writes data to Root/key via a temporary file and rename.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
