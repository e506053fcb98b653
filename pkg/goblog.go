// Package pkg is a package that provides utilities for overdub.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// GobLog is an append-only, gob-encoded record log of items of type T.
// Records are written through Append and re-read in order through Range.
type GobLog[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type gobLogImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// CreateGobLog creates (or truncates) a log at path, ready for appends.
func CreateGobLog[T any](path string) (GobLog[T], error) {
	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create gob log", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create gob log: %w", err)
	}

	return &gobLogImpl[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// OpenGobLog opens an existing log at path for reading. Appending to a
// reopened log is not supported; gob streams are written in one session.
func OpenGobLog[T any](path string) (GobLog[T], error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open gob log: %w", err)
	}

	log := &gobLogImpl[T]{path: path}

	// Count the records once so Len is available before any Range.
	length := uint64(0)

	err := log.Range(func(_ uint64, _ T) error {
		length++
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.length = length

	return log, nil
}

// Append implements GobLog.
func (g *gobLogImpl[T]) Append(item T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.encoder == nil {
		return errors.New("gob log is not open for appending")
	}

	if err := g.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", g.path, "index", g.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	g.length++

	return nil
}

// Range implements GobLog. It reads the file from the start, so it sees
// every record appended before the call.
func (g *gobLogImpl[T]) Range(f func(index uint64, item T) error) error {
	file, err := os.Open(g.path)
	if err != nil {
		return fmt.Errorf("failed to open gob log for reading: %w", err)
	}
	defer func() { _ = file.Close() }()

	decoder := gob.NewDecoder(file)
	index := uint64(0)

	for {
		var item T

		err := decoder.Decode(&item)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to decode item %d: %w", index, err)
		}

		if err := f(index, item); err != nil {
			return err
		}

		index++
	}
}

// Len implements GobLog.
func (g *gobLogImpl[T]) Len() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.length
}

// Path implements GobLog.
func (g *gobLogImpl[T]) Path() string {
	return g.path
}

// Close implements GobLog.
func (g *gobLogImpl[T]) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.file == nil {
		return nil
	}

	if err := g.file.Close(); err != nil {
		slog.Error("failed to close gob log", "path", g.path, "error", err)
		return err
	}

	g.file = nil
	g.encoder = nil

	return nil
}
