package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Document is the in-memory form of a whole collection file
type Document interface {
	Validate() error
}

// Definition describes a collection: its name, backing file and empty value
type Definition[T Document] struct {
	Name  string
	File  string
	Empty func() T
}

// Collection is a typed handle over one collection file
type Collection[T Document] struct {
	store *Store
	name  string
	path  string
	empty func() T
	lk    *collectionLock
}

// Register returns the handle for def. Handles for the same name share a lock.
func Register[T Document](s *Store, def Definition[T]) *Collection[T] {
	return &Collection[T]{
		store: s,
		name:  def.Name,
		path:  filepath.Join(s.dir, def.File),
		empty: def.Empty,
		lk:    s.lockFor(def.Name, def.File),
	}
}

// Load reads a snapshot of the collection without taking the mutation lock.
// Use it only for reads that are not followed by a store.
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return c.read()
}

// Replace validates doc and overwrites the whole collection with it
func (c *Collection[T]) Replace(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.lock(); err != nil {
		return err
	}
	defer c.unlock()

	return c.write(doc)
}

// Mutate runs one load-mutate-store cycle under the collection lock.
//
// fn receives the freshly loaded document and may modify it in place or
// replace it. If fn returns an error nothing is written. The lock is
// released on every path, including store failures.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(doc *T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.lock(); err != nil {
		return err
	}
	defer c.unlock()

	doc, err := c.read()
	if err != nil {
		return err
	}

	if err := fn(&doc); err != nil {
		return err
	}

	return c.write(doc)
}

func (c *Collection[T]) lock() error {
	started := time.Now()
	c.lk.mu.Lock()
	if c.lk.file != nil {
		if err := c.lk.file.Lock(); err != nil {
			c.lk.mu.Unlock()
			return &StorageIOError{Collection: c.name, Path: c.lk.file.Path(), Op: "lock", Err: err}
		}
	}
	c.store.metrics.observeLockWait(c.name, time.Since(started))
	return nil
}

func (c *Collection[T]) unlock() {
	if c.lk.file != nil {
		if err := c.lk.file.Unlock(); err != nil {
			c.store.logger.Warnw("Failed to release file lock", "collection", c.name, "path", c.lk.file.Path(), "error", err)
		}
	}
	c.lk.mu.Unlock()
}

func (c *Collection[T]) read() (doc T, err error) {
	started := time.Now()
	var size int
	defer func() {
		c.store.logOperation(c.name, "load", c.path, size, started, err)
	}()

	data, err := afero.ReadFile(c.store.fs, c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.empty(), nil
		}
		return doc, &StorageIOError{Collection: c.name, Path: c.path, Op: "read", Err: err}
	}
	size = len(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return c.empty(), nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return doc, c.corrupt(errNullDocument)
	}

	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return doc, c.corrupt(err)
	}
	if err := doc.Validate(); err != nil {
		return doc, c.corrupt(err)
	}

	return doc, nil
}

func (c *Collection[T]) write(doc T) (err error) {
	started := time.Now()
	var size int
	defer func() {
		c.store.logOperation(c.name, "store", c.path, size, started, err)
	}()

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("storage: refusing to store invalid %s document: %w", c.name, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", c.name, err)
	}
	// nil slices and maps encode as null; persist the empty shape instead
	if bytes.Equal(data, []byte("null")) {
		if data, err = json.MarshalIndent(c.empty(), "", "  "); err != nil {
			return fmt.Errorf("storage: encode %s: %w", c.name, err)
		}
	}
	data = append(data, '\n')
	size = len(data)

	return c.store.writeAtomic(c.name, c.path, data)
}

func (c *Collection[T]) corrupt(err error) error {
	return &CorruptDataError{Collection: c.name, Path: c.path, Err: err}
}
