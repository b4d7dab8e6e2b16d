package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSinkWireFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	require.NoError(t, sink.Emit(NewStarted("s1", "http://x/f", "/tmp/f", 100)))
	require.NoError(t, sink.Emit(NewProgress("s1", "http://x/f", 50, 50, 10, 5)))
	require.NoError(t, sink.Emit(NewRateLimitExceeded("s1", "http://x/f")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var started map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &started))
	assert.Equal(t, "started", started["type"])
	assert.Equal(t, map[string]any{"url": "http://x/f", "path": "/tmp/f", "content_length": float64(100)}, started["data"])

	var progress map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &progress))
	data := progress["data"].(map[string]any)
	assert.Equal(t, float64(50), data["progress_percentage"])
	assert.Equal(t, float64(50), data["downloaded_bytes"])
	assert.Equal(t, float64(10), data["download_speed"])
	assert.Equal(t, float64(5), data["eta"])

	assert.JSONEq(t, `{"type":"rate_limit_exceeded","data":{"url":"http://x/f"}}`, lines[2])
}

func TestMultiDeliversToAllSinks(t *testing.T) {
	var got []Kind
	failing := SinkFunc(func(Event) error { return errors.New("observer gone") })
	recording := SinkFunc(func(e Event) error {
		got = append(got, e.Kind)
		return nil
	})

	err := Multi(failing, nil, recording).Emit(NewCompleted("s", "u"))
	require.Error(t, err)
	assert.Equal(t, []Kind{Completed}, got)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, sink.Emit(NewStarted("s", "http://x/f", "/tmp/f", 10)))
	assert.Contains(t, buf.String(), `"event":"started"`)
	assert.Contains(t, buf.String(), `"contentLength":10`)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
