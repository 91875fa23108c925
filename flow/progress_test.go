package flow

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func captureLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestProgress_CountsAndLogsTotal(t *testing.T) {
	log, buf := captureLogger()
	ctx := context.Background()

	p := NewProgress(log, "stack", time.Hour)
	for i := 0; i < 5; i++ {
		p.Add(ctx, 2)
	}
	require.Equal(t, 10, p.Count())

	p.Done(ctx)
	out := buf.String()
	require.Contains(t, out, "stack done")
	require.Contains(t, out, `"traces":10`)
}

func TestProgress_RateLimitsUpdates(t *testing.T) {
	log, buf := captureLogger()
	ctx := context.Background()

	// An hour-long interval admits exactly one update burst.
	p := NewProgress(log, "read", time.Hour)
	for i := 0; i < 1000; i++ {
		p.Add(ctx, 1)
	}
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"msg":"read"`)))
}

func TestLogger_Fields(t *testing.T) {
	log, buf := captureLogger()
	ctx := context.Background()

	log.WithUtility("seisstack").WithSpool("line1.spool").InfoContext(ctx, "starting")
	out := buf.String()
	require.Contains(t, out, `"utility":"seisstack"`)
	require.Contains(t, out, `"spool":"line1.spool"`)
}

func TestLogger_LogPass(t *testing.T) {
	log, buf := captureLogger()
	ctx := context.Background()

	log.LogPass(ctx, "nmo", 1204, nil)
	require.Contains(t, buf.String(), "pass completed")
	require.Contains(t, buf.String(), `"traces":1204`)

	buf.Reset()
	log.LogPass(ctx, "nmo", 7, context.DeadlineExceeded)
	require.Contains(t, buf.String(), "pass failed")
	require.Contains(t, buf.String(), "deadline exceeded")
}
