package gcsuploader

import (
	"context"
	"io"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadFile uploads a local file to a storage bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// OpenObject opens a reader on a stored object.
	OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct {
	// CredentialsFile is a service account key; empty means
	// Application Default Credentials.
	CredentialsFile string
}

// NewGCSStorageService creates a new instance of GCSStorageService.
func NewGCSStorageService(credentialsFile string) *GCSStorageService {
	return &GCSStorageService{CredentialsFile: credentialsFile}
}

// UploadFile delegates to the package level UploadFile.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return UploadFile(ctx, bucketName, objectName, filePath, s.clientOptions()...)
}

// OpenObject delegates to the package level OpenObject.
func (s *GCSStorageService) OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	return OpenObject(ctx, bucketName, objectName, s.clientOptions()...)
}
