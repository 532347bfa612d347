package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("hello {{.name}}", map[string]any{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestRenderTemplate_NoMarkersFastPath(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestRenderTemplate_MissingKeyFails(t *testing.T) {
	_, err := RenderTemplate("hello {{.missing}}", map[string]any{"name": "world"})
	assert.Error(t, err)
}

func TestRenderTemplate_InvalidSyntaxFails(t *testing.T) {
	_, err := RenderTemplate("hello {{.name", map[string]any{"name": "world"})
	assert.Error(t, err)
}
