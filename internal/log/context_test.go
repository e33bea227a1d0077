// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithMissionID(ctx, "m-1")
	ctx = ContextWithDroneID(ctx, "7")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "m-1", MissionIDFromContext(ctx))
	assert.Equal(t, "7", DroneIDFromContext(ctx))
}

func TestContextCarriersTolerateNil(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.Equal(t, "", RequestIDFromContext(nil))
	assert.Equal(t, "", MissionIDFromContext(nil))
	assert.NotNil(t, ContextWithRequestID(nil, "x"))
}

func TestWithContextEnrichesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithMissionID(context.Background(), "m-42")
	lg := WithContext(ctx, base)
	lg.Info().Msg("step")

	out := buf.String()
	assert.Contains(t, out, `"mission_id":"m-42"`)
	assert.Contains(t, out, `"step"`)
}

func TestWithContextNoFieldsReturnsSameOutput(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	lg := WithContext(context.Background(), base)
	lg.Info().Msg("plain")
	assert.NotContains(t, buf.String(), "mission_id")
}
