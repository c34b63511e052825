package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFileStorage keeps files in process memory. It serves short-lived
// runtimes without a writable disk, and tests.
type MemoryFileStorage struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
}

type memoryFile struct {
	data         []byte
	metadata     map[string]string
	contentType  string
	lastModified time.Time
}

// NewMemoryFileStorage creates an empty in-memory storage
func NewMemoryFileStorage() *MemoryFileStorage {
	return &MemoryFileStorage{files: make(map[string]*memoryFile)}
}

// Store implements FileStorage.Store
func (m *MemoryFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts == nil || !opts.Overwrite {
		if _, exists := m.files[key]; exists {
			return NewStorageError("Store", key, ErrFileAlreadyExists, false)
		}
	}

	file := &memoryFile{
		data:         append([]byte(nil), data...),
		contentType:  contentTypeOf(key),
		lastModified: time.Now(),
	}
	if opts != nil {
		if opts.ContentType != "" {
			file.contentType = opts.ContentType
		}
		if len(opts.Metadata) > 0 {
			file.metadata = make(map[string]string, len(opts.Metadata))
			for k, v := range opts.Metadata {
				file.metadata[k] = v
			}
		}
	}
	m.files[key] = file

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (m *MemoryFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[key]
	if !ok {
		return nil, NewStorageError("Retrieve", key, ErrFileNotFound, false)
	}
	return append([]byte(nil), file.data...), nil
}

// Delete implements FileStorage.Delete
func (m *MemoryFileStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[key]; !ok {
		return NewStorageError("Delete", key, ErrFileNotFound, false)
	}
	delete(m.files, key)
	return nil
}

// Exists implements FileStorage.Exists
func (m *MemoryFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[key]
	return ok, nil
}

// List implements FileStorage.List
func (m *MemoryFileStorage) List(ctx context.Context, opts *ListOptions) ([]FileMetadata, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.files))
	for key := range m.files {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if opts.MaxResults > 0 && len(keys) > opts.MaxResults {
		keys = keys[:opts.MaxResults]
	}

	files := make([]FileMetadata, 0, len(keys))
	for _, key := range keys {
		f := m.files[key]
		files = append(files, FileMetadata{
			Key:          key,
			Size:         int64(len(f.data)),
			ContentType:  f.contentType,
			LastModified: f.lastModified,
			Metadata:     f.metadata,
		})
	}
	return files, nil
}

// Close implements FileStorage.Close
func (m *MemoryFileStorage) Close() error {
	return nil
}
