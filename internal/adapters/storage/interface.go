package storage

import (
	"context"
	"time"
)

// FileMetadata describes a stored file
type FileMetadata struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ListOptions filters a listing
type ListOptions struct {
	Prefix     string `json:"prefix,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// StoreOptions provides options for storing files
type StoreOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Overwrite   bool              `json:"overwrite,omitempty"`
}

// FileStorage keeps uploaded files under slash-separated keys
type FileStorage interface {
	// Store saves data under key
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a file by its storage key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns files ordered by key
	List(ctx context.Context, opts *ListOptions) ([]FileMetadata, error)

	// Close cleans up any resources used by the storage implementation
	Close() error
}

// StorageConfig selects and configures a storage implementation
type StorageConfig struct {
	Type     string `json:"type" mapstructure:"type"`           // "local" or "memory"
	BasePath string `json:"base_path" mapstructure:"base_path"` // For local storage
}
