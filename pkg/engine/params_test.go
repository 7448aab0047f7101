package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jpfielding/dcmtx.go/pkg/engine"
)

func TestParseProgressionOrder(t *testing.T) {
	tests := []struct {
		in   string
		want engine.ProgressionOrder
		ok   bool
	}{
		{"LRCP", engine.LRCP, true},
		{"rpcl", engine.RPCL, true},
		{" cprl ", engine.CPRL, true},
		{"3", engine.PCRL, true},
		{"9", engine.LRCP, false},
		{"XYZ", engine.LRCP, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := engine.ParseProgressionOrder(tt.in)
			assert.Equal(t, tt.ok, err == nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSampleFactor(t *testing.T) {
	for in, want := range map[string]engine.SampleFactor{
		"":        engine.SampleFactorDefault,
		"default": engine.SampleFactorDefault,
		"444":     engine.SampleFactor444,
		"4:2:2":   engine.SampleFactor422,
	} {
		got, err := engine.ParseSampleFactor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := engine.ParseSampleFactor("420")
	assert.Error(t, err)
}

func TestEncodeParamsYAML(t *testing.T) {
	p := engine.DefaultEncodeParams()
	doc := "lossy: true\nprogressionOrder: RPCL\nsampleFactor: \"422\"\nrate: 8\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))
	assert.True(t, p.Lossy)
	assert.Equal(t, engine.RPCL, p.ProgressionOrder)
	assert.Equal(t, engine.SampleFactor422, p.SampleFactor)
	assert.Equal(t, 8, p.Rate)
	assert.Equal(t, 90, p.Quality)

	out, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), "progressionOrder: RPCL")

	err = yaml.Unmarshal([]byte("progressionOrder: ZZZZ\n"), &p)
	assert.Error(t, err)
}
