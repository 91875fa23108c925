// Package archive stores finished spools: local directories during
// field processing, S3-compatible object stores for the archive
// proper. Utilities address either through one location string.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a spool does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
// The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store reads and writes whole named spools.
type Store interface {
	// Open opens a spool for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create starts a new spool; Close commits it.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	// List returns the spool names under prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// S3Config carries the connection settings used for s3:// locations.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Resolve turns a spool location into a store and the name inside it.
// "s3://bucket/key" selects a MinioStore built from cfg; anything else
// is a file path served by a Local store rooted at its directory.
func Resolve(location string, cfg S3Config) (Store, string, error) {
	if after, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, key, ok := strings.Cut(after, "/")
		if !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("archive: s3 location %q needs bucket/key", location)
		}
		st, err := NewMinioStore(cfg, bucket, "")
		if err != nil {
			return nil, "", err
		}
		return st, key, nil
	}
	dir, name := filepath.Split(location)
	if name == "" {
		return nil, "", fmt.Errorf("archive: location %q has no spool name", location)
	}
	if dir == "" {
		dir = "."
	}
	return NewLocal(dir), name, nil
}
