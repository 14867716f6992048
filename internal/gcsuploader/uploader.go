package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrInvalidURI is returned for strings that are not gs://bucket/object URIs.
var ErrInvalidURI = errors.New("invalid GCS URI")

func (s *GCSStorageService) clientOptions() []option.ClientOption {
	if s == nil || s.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(s.CredentialsFile)}
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
// Without client options it uses Application Default Credentials.
func UploadFile(ctx context.Context, bucketName, objectName, filePath string, opts ...option.ClientOption) error {
	// Open local file
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentTypeFor(objectName)

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}

	return nil
}

// objectReader closes the storage client together with the object reader.
type objectReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *objectReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenObject opens a streaming reader on gs://bucketName/objectName.
// The caller must close it.
func OpenObject(ctx context.Context, bucketName, objectName string, opts ...option.ClientOption) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("OpenObject: creating storage client: %w", err)
	}

	rc, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("OpenObject: reading object %s/%s: %w", bucketName, objectName, err)
	}

	return &objectReader{Reader: rc, client: client}, nil
}

// ParseGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func ParseGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w (no object path): %s", ErrInvalidURI, gcsURI)
	}

	return parts[0], parts[1], nil
}

// ParseUploadTarget resolves the bucket and object filePath is uploaded to.
// A URI ending in "/" names a folder and the object keeps the local file name.
func ParseUploadTarget(gcsURI, filePath string) (bucket, object string, err error) {
	if strings.HasSuffix(gcsURI, "/") {
		gcsURI += filepath.Base(filePath)
	}
	return ParseGCSURI(gcsURI)
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/chart.png" → "chart.png"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

func contentTypeFor(objectName string) string {
	switch strings.ToLower(path.Ext(objectName)) {
	case ".png":
		return "image/png"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
