package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/swarmchain/core"
)

// Interface compliance (compile-time assertion)
var _ core.Model = (*Static)(nil)

func TestStatic_Predict(t *testing.T) {
	m := NewStatic("echo-1", func(input string) string { return "echo: " + input })
	out, err := m.Predict(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)

	// Nil transform echoes the input unchanged.
	plain := NewStatic("plain", nil)
	out, err = plain.Predict(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestStatic_ModelName(t *testing.T) {
	m := NewStatic("echo-1", nil)
	assert.Equal(t, "echo-1", m.ModelName())
	m.SetModelName("echo-2")
	assert.Equal(t, "echo-2", m.ModelName())
}

func TestStatic_FitUnsupported(t *testing.T) {
	m := NewStatic("echo-1", nil)
	err := m.Fit(context.Background(), []core.TrainingSample{{Input: "a", Target: "b"}})
	assert.ErrorIs(t, err, ErrFitUnsupported)
}

func TestOptionExtractors(t *testing.T) {
	options := map[string]any{
		OptionTemperature: 0.2,
		OptionMaxTokens:   128,
	}
	assert.Equal(t, 0.2, Float64Option(options, OptionTemperature, 0.7))
	assert.Equal(t, int64(128), Int64Option(options, OptionMaxTokens, 4096))

	// Fallbacks apply for absent or wrongly typed values.
	assert.Equal(t, 0.7, Float64Option(nil, OptionTemperature, 0.7))
	assert.Equal(t, int64(4096), Int64Option(map[string]any{OptionMaxTokens: "many"}, OptionMaxTokens, 4096))

	// Numeric cross-typing is tolerated.
	assert.Equal(t, 2.0, Float64Option(map[string]any{OptionTemperature: 2}, OptionTemperature, 0))
	assert.Equal(t, int64(64), Int64Option(map[string]any{OptionMaxTokens: 64.0}, OptionMaxTokens, 0))
}
