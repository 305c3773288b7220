package telemetry_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/venvup/internal/adapters/telemetry"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_Start(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", recorder)
	t.Cleanup(func() { _ = tracer.Shutdown(t.Context()) })

	_, span := tracer.Start(t.Context(), "shadow_building", ports.WithAttribute("path", "/srv/envs/pkg"))
	span.SetAttribute("attempt", 1)
	span.SetAttribute("blue_green", true)
	_, err := span.Write([]byte("copying"))
	require.NoError(t, err)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "shadow_building", s.Name())
	assert.Contains(t, s.Attributes(), attribute.String("path", "/srv/envs/pkg"))
	assert.Contains(t, s.Attributes(), attribute.Int("attempt", 1))
	assert.Contains(t, s.Attributes(), attribute.Bool("blue_green", true))
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "log", s.Events()[0].Name)
	assert.Equal(t, codes.Unset, s.Status().Code)
}

func TestOTelSpan_RecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", recorder)

	_, span := tracer.Start(t.Context(), "validating")
	span.RecordError(nil)
	span.RecordError(errors.New("target version missing"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "target version missing", ended[0].Status().Description)
}

func TestLogBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var lines []string
	log.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
		lines = append(lines, msg)
	}).Times(2)

	tracer := telemetry.NewOTelTracer("test", telemetry.NewLogBridge(log))

	_, ok := tracer.Start(t.Context(), "switched", ports.WithAttribute("to_version", "2.0.1"))
	ok.End()

	_, failed := tracer.Start(t.Context(), "validating")
	failed.RecordError(errors.New("boom"))
	failed.End()

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "switched ("))
	assert.True(t, strings.HasSuffix(lines[0], " to_version=2.0.1"))
	assert.True(t, strings.HasSuffix(lines[1], " failed: boom"))
}

func TestLogBridge_NilLogger(t *testing.T) {
	tracer := telemetry.NewOTelTracer("test", telemetry.NewLogBridge(nil))
	_, span := tracer.Start(t.Context(), "noop")
	assert.NotPanics(t, span.End)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx, span := tracer.Start(t.Context(), "anything", ports.WithAttribute("k", "v"))
	assert.Equal(t, t.Context(), ctx)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.End()
}
