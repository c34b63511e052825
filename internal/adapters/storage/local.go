package storage

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const metadataSuffix = ".metadata"

// LocalFileStorage implements FileStorage on the local filesystem
type LocalFileStorage struct {
	basePath string
	logger   *logrus.Logger
}

// NewLocalFileStorage creates the base directory when missing
func NewLocalFileStorage(basePath string, logger *logrus.Logger) (*LocalFileStorage, error) {
	if logger == nil {
		logger = logrus.New()
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalFileStorage", "", err, false)
	}

	return &LocalFileStorage{basePath: absPath, logger: logger}, nil
}

// Store writes the file through a temporary file and a rename
func (l *LocalFileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err, false)
	}

	filePath := l.getFilePath(key)

	if opts == nil || !opts.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return NewStorageError("Store", key, ErrFileAlreadyExists, false)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return NewStorageError("Store", key, err, true)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return NewStorageError("Store", key, err, true)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return NewStorageError("Store", key, err, true)
	}

	if opts != nil && len(opts.Metadata) > 0 {
		if err := l.storeMetadata(key, opts.Metadata); err != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Failed to store file metadata")
		}
	}

	return nil
}

// Retrieve implements FileStorage.Retrieve
func (l *LocalFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	data, err := os.ReadFile(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound, false)
		}
		return nil, NewStorageError("Retrieve", key, err, true)
	}

	return data, nil
}

// Delete implements FileStorage.Delete
func (l *LocalFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Delete", key, err, false)
	}

	if err := os.Remove(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return NewStorageError("Delete", key, ErrFileNotFound, false)
		}
		return NewStorageError("Delete", key, err, true)
	}
	os.Remove(l.getMetadataPath(key))

	return nil
}

// Exists implements FileStorage.Exists
func (l *LocalFileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	if _, err := os.Stat(l.getFilePath(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err, true)
	}

	return true, nil
}

// List walks the base directory in lexical order
func (l *LocalFileStorage) List(ctx context.Context, opts *ListOptions) ([]FileMetadata, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	files := []FileMetadata{}
	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metadataSuffix) || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		if opts.MaxResults > 0 && len(files) >= opts.MaxResults {
			return filepath.SkipAll
		}

		relPath, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relPath)
		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		meta := FileMetadata{
			Key:          key,
			Size:         info.Size(),
			ContentType:  contentTypeOf(key),
			LastModified: info.ModTime(),
		}
		if custom, err := l.loadMetadata(key); err == nil {
			meta.Metadata = custom
		}
		files = append(files, meta)
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", opts.Prefix, err, true)
	}

	return files, nil
}

// Close implements FileStorage.Close
func (l *LocalFileStorage) Close() error {
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}

func contentTypeOf(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (l *LocalFileStorage) getFilePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalFileStorage) getMetadataPath(key string) string {
	return l.getFilePath(key) + metadataSuffix
}

// Metadata is kept next to the file as key=value lines.
func (l *LocalFileStorage) storeMetadata(key string, metadata map[string]string) error {
	lines := make([]string, 0, len(metadata))
	for k, v := range metadata {
		lines = append(lines, k+"="+v)
	}
	return os.WriteFile(l.getMetadataPath(key), []byte(strings.Join(lines, "\n")), 0644)
}

func (l *LocalFileStorage) loadMetadata(key string) (map[string]string, error) {
	data, err := os.ReadFile(l.getMetadataPath(key))
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(strings.TrimSpace(line), "="); ok {
			metadata[k] = v
		}
	}
	return metadata, nil
}
