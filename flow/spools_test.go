package flow

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiskit/seiskit/archive"
	"github.com/seiskit/seiskit/trace"
)

func TestSpoolRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "line1", "shots.spool")

	w, err := CreateSpool(ctx, location, archive.S3Config{}, trace.CompressionLZ4)
	require.NoError(t, err)
	require.NoError(t, w.Append(&trace.Trace{
		Header:  trace.Header{TraceID: 7, CDP: 42, Dt: 2000},
		Samples: []float32{1, -1, 0.5},
	}))
	require.NoError(t, w.Close())

	r, closer, err := OpenSpool(ctx, location, archive.S3Config{})
	require.NoError(t, err)
	defer closer.Close()

	tr, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, int32(7), tr.TraceID)
	require.Equal(t, []float32{1, -1, 0.5}, tr.Samples)

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}

func TestOpenSpool_Missing(t *testing.T) {
	_, _, err := OpenSpool(context.Background(), filepath.Join(t.TempDir(), "no.spool"), archive.S3Config{})
	require.ErrorIs(t, err, archive.ErrNotFound)
}
