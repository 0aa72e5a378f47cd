package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVelocityChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderVelocityChart(&buf, sampleFrames(), "px/ms"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Pointer Speed")
	assert.Contains(t, html, "Tracked Pointers")
	// 500 px/s converted to px/ms.
	assert.Contains(t, html, "0.5")
	assert.True(t, strings.Contains(html, "avg x") && strings.Contains(html, "avg y"))
}

func TestRenderVelocityChartErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderVelocityChart(&buf, nil, "px/s"), ErrNoData)

	err := RenderVelocityChart(&buf, sampleFrames(), "mph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid velocity units")
	assert.Zero(t, buf.Len())
}
