package obs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestIDTagsLogs(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	t.Cleanup(func() { Setup("info", "json", nil) })

	ctx := WithRequestID(context.Background(), "abc123")
	require.Equal(t, "abc123", RequestID(ctx))

	Ctx(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"req_id":"abc123"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	assert.Same(t, &log.Logger, Ctx(context.Background()))
	assert.Empty(t, RequestID(context.Background()))
}

func TestTimeLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	t.Cleanup(func() { Setup("info", "json", nil) })

	ctx := WithRequestID(context.Background(), "r1")

	err := errors.New("boom")
	Time(ctx, "op.fail")(&err)
	assert.Contains(t, buf.String(), `"op":"op.fail"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	var ok error
	Time(ctx, "op.ok")(&ok)
	assert.Contains(t, buf.String(), `"op":"op.ok"`)
	assert.NotContains(t, buf.String(), "error")
}
