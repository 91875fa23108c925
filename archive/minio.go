package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store for MinIO and S3-compatible storage.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ Store = (*MinioStore)(nil)

// NewMinioStore connects to the endpoint in cfg. rootPrefix is
// prepended to all spool names.
func NewMinioStore(cfg S3Config, bucket, rootPrefix string) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive: s3 endpoint not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connect %s: %w", cfg.Endpoint, err)
	}
	return &MinioStore{client: client, bucket: bucket, prefix: rootPrefix}, nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a spool object for reading.
func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)

	// Stat first so a missing spool surfaces here, not on first read.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, fmt.Errorf("archive: %s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
}

// Create starts a streaming upload. Close flushes the stream and
// returns the upload result.
func (s *MinioStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &minioWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// List returns all spool names with the given prefix.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

type minioWriter struct {
	pw       *io.PipeWriter
	done     chan error
	finished atomic.Bool
}

func (w *minioWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *minioWriter) Close() error {
	if !w.finished.CompareAndSwap(false, true) {
		return errors.New("archive: upload already closed")
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
