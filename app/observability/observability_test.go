package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	obs, err := New(context.Background(), Config{
		ServiceName:     "cutline",
		Environment:     "test",
		LogLevel:        "warn",
		LogFormat:       "json",
		MetricsEnabled:  true,
		TraceSampleRate: 1,
	}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	obs.Logger.Info("hidden")
	obs.Logger.Warn("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "cutline", line["service"])

	require.NotNil(t, obs.Registry)
	families, err := obs.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	_, span := obs.Tracer.Start(context.Background(), "test-span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestNew_MetricsDisabled(t *testing.T) {
	obs, err := New(context.Background(), Config{ServiceName: "cutline", LogFormat: "text"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, obs.Registry)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, -4, int(parseLevel("debug")))
	assert.Equal(t, 8, int(parseLevel("ERROR")))
	assert.Equal(t, 0, int(parseLevel("chatty")))
}
