package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracer_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	tracer, err := NewTracer(context.Background(), "hollywoo-test", Options{Writer: &buf})
	require.NoError(t, err)

	ctx, span := Start(context.Background(), "scanner.Scan", ScanTracingAttrs("run-1", "/media/movies")...)
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tracer.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "scanner.Scan")
	assert.Contains(t, buf.String(), "run-1")
}

func TestScanTracingAttrs_OmitsEmpty(t *testing.T) {
	attrs := ScanTracingAttrs("", "")
	assert.Len(t, attrs, 2)

	attrs = ScanTracingAttrs("id", "/x")
	assert.Len(t, attrs, 4)
}

func TestStart_WithoutProviderIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		_, span := Start(context.Background(), "noop")
		span.End()
	})
}
