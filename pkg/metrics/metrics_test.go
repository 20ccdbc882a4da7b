package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRecordingWithoutNewRelic(t *testing.T) {
	ctx := NewContextWithNewRelic(context.Background(), nil)
	assert.Nil(t, ctx.Value(NewRelicContextKey))

	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]any{"key": "value"})

	tracer := TraceMethodCall(ctx, "metrics", "TestRecordingWithoutNewRelic")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestFormatNewRelicMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Message = "failure building instruction"
	assert.Equal(t, "failure building instruction", formatNewRelicMessage(entry))

	entry = entry.WithField("path", "/send/sol").WithError(errors.New("boom"))
	entry.Message = "failure building instruction"
	assert.Equal(
		t,
		`message="failure building instruction", error="boom", data={"path":"/send/sol"}`,
		formatNewRelicMessage(entry),
	)
}
