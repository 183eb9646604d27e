package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWith_Accumulates(t *testing.T) {
	ctx := ContextWith(context.Background(), "request_id", "r1")
	ctx = ContextWith(ctx, "user_id", "u1")

	assert.Equal(t, []any{"request_id", "r1", "user_id", "u1"}, FieldsFrom(ctx))
	assert.Nil(t, FieldsFrom(context.Background()))
}

func TestContextFields_ReachBothLoggers(t *testing.T) {
	ctx := ContextWith(context.Background(), "request_id", "r1")

	var sbuf bytes.Buffer
	NewJSONLogger(&sbuf, slog.LevelInfo).Info(ctx, "saved", "timeline_id", "t1")
	assert.Contains(t, sbuf.String(), `"request_id":"r1"`)
	assert.Contains(t, sbuf.String(), `"timeline_id":"t1"`)

	z, zbuf := newZerologTestLogger(t)
	z.Warn(ctx, "slow")
	m := decodeLine(t, zbuf.Bytes())
	assert.Equal(t, "r1", m["request_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
