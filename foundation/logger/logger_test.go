package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesServiceAndTrace(t *testing.T) {
	var buf bytes.Buffer

	traceID := func(context.Context) string { return "abc123" }
	log := logger.New(&buf, logger.LevelInfo, "TENANCY", traceID)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "resolved", "slug", "wondernails")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "resolved", rec["msg"])
	require.Equal(t, "TENANCY", rec["service"])
	require.Equal(t, "wondernails", rec["slug"])
	require.Equal(t, "abc123", rec["trace_id"])
}

func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	var got []string

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			got = append(got, r.Message)
		},
	}

	log := logger.NewWithEvents(&buf, logger.LevelInfo, "TENANCY", nil, events)
	log.Info(context.Background(), "fine")
	log.Error(context.Background(), "boom")

	require.Equal(t, []string{"boom"}, got)
}
