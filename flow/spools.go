package flow

import (
	"context"
	"io"

	"github.com/seiskit/seiskit/archive"
	"github.com/seiskit/seiskit/trace"
)

// OpenSpool resolves a location and opens the spool inside it. The
// returned closer releases the underlying blob once reading is done.
func OpenSpool(ctx context.Context, location string, s3 archive.S3Config) (*trace.Reader, io.Closer, error) {
	store, name, err := archive.Resolve(location, s3)
	if err != nil {
		return nil, nil, err
	}
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	r, err := trace.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return r, rc, nil
}

// CreateSpool resolves a location and starts a spool there. Closing
// the writer commits the spool.
func CreateSpool(ctx context.Context, location string, s3 archive.S3Config, codec trace.Compression) (*trace.Writer, error) {
	store, name, err := archive.Resolve(location, s3)
	if err != nil {
		return nil, err
	}
	wc, err := store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	w, err := trace.NewWriter(wc, codec)
	if err != nil {
		wc.Close()
		return nil, err
	}
	return w, nil
}
