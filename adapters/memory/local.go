package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/lborres/wanderlust/core"
)

var _ core.LocalStorage = (*LocalStorage)(nil)

// LocalStorage is a map-backed key/value store. SetErr and DeleteErr, when
// set, are returned by every write so tests can simulate a failing disk.
type LocalStorage struct {
	mu        sync.Mutex
	data      map[string][]byte
	SetErr    error
	DeleteErr error
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{data: make(map[string][]byte)}
}

func (l *LocalStorage) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (l *LocalStorage) Set(_ context.Context, key string, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.SetErr != nil {
		return l.SetErr
	}
	l.data[key] = slices.Clone(value)
	return nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.DeleteErr != nil {
		return l.DeleteErr
	}
	delete(l.data, key)
	return nil
}
