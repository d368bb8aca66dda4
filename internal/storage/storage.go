package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload folders, one per file category.
const (
	FolderJobImages       = "job-images"
	FolderPropertyImages  = "property-images"
	FolderIDDocuments     = "ids"
	FolderJobApplications = "job-applications"
	FolderCoverPhotos     = "cover_photos"
	FolderProfilePhotos   = "profile_photos"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a file at the given key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, key string) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type      string // local, s3
	BasePath  string // For local storage
	BaseURL   string // Public URL base (local)
	Bucket    string // For S3
	Region    string // For S3
	AccessKey string // For S3
	SecretKey string // For S3
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// GenerateKey builds a collision-free object key: folder/uuid.ext.
// Расширение берем из исходного имени файла, имя заменяем на uuid,
// чтобы загрузки разных пользователей не перетирали друг друга.
func GenerateKey(folder, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

// UploadFile saves the file under a generated key and returns (url, key).
func UploadFile(ctx context.Context, s Storage, folder, originalFilename string, reader io.Reader, contentType string) (string, string, error) {
	key := GenerateKey(folder, originalFilename)
	if err := s.Save(ctx, key, reader, contentType); err != nil {
		return "", "", err
	}
	url, err := s.GetURL(ctx, key)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}
