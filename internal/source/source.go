// Package source opens dataset sources by URI: local paths, file://,
// gs:// (Google Cloud Storage) and s3:// (Amazon S3 or compatible).
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/nutrition-ranker/internal/gcsuploader"
)

// ErrUnavailable marks every failure to reach or read a source: missing file,
// permission denied, network or credential problems, a stream that breaks
// mid-read. It is fatal for a run.
var ErrUnavailable = errors.New("source unavailable")

// Scheme identifies the storage backing a source.
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeGCS  Scheme = "gs"
	SchemeS3   Scheme = "s3"
)

// Location is a parsed source URI.
type Location struct {
	Scheme Scheme
	Bucket string // gs and s3 only
	Path   string // file path or object key
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Path
	}
	return string(l.Scheme) + "://" + l.Bucket + "/" + l.Path
}

// Parse interprets uri. Anything without a known scheme is a local path.
func Parse(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("Parse: %w: empty source", ErrUnavailable)
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return Location{Scheme: SchemeFile, Path: uri}, nil
	}

	switch Scheme(strings.ToLower(scheme)) {
	case SchemeFile:
		if rest == "" {
			return Location{}, fmt.Errorf("Parse: %w: no path in %q", ErrUnavailable, uri)
		}
		return Location{Scheme: SchemeFile, Path: rest}, nil
	case SchemeGCS, SchemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("Parse: %w: %q needs a bucket and an object", ErrUnavailable, uri)
		}
		return Location{Scheme: Scheme(strings.ToLower(scheme)), Bucket: bucket, Path: key}, nil
	default:
		return Location{}, fmt.Errorf("Parse: %w: unsupported scheme %q", ErrUnavailable, scheme)
	}
}

// Options carries credentials and endpoints for remote sources.
type Options struct {
	GCSCredentialsFile string

	S3Region          string
	S3Endpoint        string // custom endpoint, e.g. MinIO
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Opener opens sources described by URI.
type Opener struct {
	opts Options

	gcs gcsuploader.StorageService

	// Backends are swappable for tests.
	openFile func(ctx context.Context, loc Location) (io.ReadCloser, error)
	openS3   func(ctx context.Context, loc Location) (io.ReadCloser, error)
}

// NewOpener creates an Opener with the given remote options.
func NewOpener(opts Options) *Opener {
	o := &Opener{opts: opts}
	o.gcs = gcsuploader.NewGCSStorageService(opts.GCSCredentialsFile)
	o.openFile = openLocal
	o.openS3 = o.openS3Object
	return o
}

// Open returns a reader over the source content. The caller must close it.
// Every error wraps ErrUnavailable.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}

	var rc io.ReadCloser
	switch loc.Scheme {
	case SchemeGCS:
		rc, err = o.gcs.OpenObject(ctx, loc.Bucket, loc.Path)
	case SchemeS3:
		rc, err = o.openS3(ctx, loc)
	default:
		rc, err = o.openFile(ctx, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("Open %s: %w: %w", loc, ErrUnavailable, err)
	}
	return rc, nil
}
