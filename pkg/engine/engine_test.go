package engine_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmtx.go/pkg/engine"
	"github.com/jpfielding/dcmtx.go/pkg/engine/enginetest"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

func gray8(w, h int) exchange.Context {
	buf := make([]byte, w*h)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return exchange.Context{
		Width: w, Height: h,
		BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 1,
		PhotometricInterpretation: "MONOCHROME2",
		DecodedBuffer:             buf,
	}
}

func TestLifecycle(t *testing.T) {
	e := engine.New()
	assert.False(t, e.IsInitialized())

	_, err := e.Encode(context.Background(), engine.RLE, gray8(2, 2), engine.DefaultEncodeParams())
	assert.ErrorIs(t, err, dcmerr.ErrEngineNotInitialized)

	require.NoError(t, e.Initialize(context.Background()))
	require.NoError(t, e.Initialize(context.Background()))
	assert.True(t, e.IsInitialized())

	e.Release()
	assert.False(t, e.IsInitialized())
	_, err = e.Decode(context.Background(), engine.RLE, gray8(2, 2), engine.DecodeParams{})
	assert.ErrorIs(t, err, dcmerr.ErrEngineNotInitialized)
}

func TestInitializeHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := engine.New()
	assert.ErrorIs(t, e.Initialize(ctx), context.Canceled)
	assert.False(t, e.IsInitialized())
}

func TestValidation(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Initialize(context.Background()))

	tests := []struct {
		name   string
		modify func(*exchange.Context)
		kind   error
	}{
		{"ZeroWidth", func(c *exchange.Context) { c.Width = 0 }, dcmerr.ErrInvalidGeometry},
		{"StoredOverAllocated", func(c *exchange.Context) { c.BitsStored = 12 }, dcmerr.ErrInvalidGeometry},
		{"NoSamples", func(c *exchange.Context) { c.SamplesPerPixel = 0 }, dcmerr.ErrInvalidGeometry},
		{"Empty", func(c *exchange.Context) { c.DecodedBuffer = nil }, dcmerr.ErrMissingData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := gray8(4, 4)
			tt.modify(&c)
			_, err := e.Encode(context.Background(), engine.RLE, c, engine.DefaultEncodeParams())
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestBackendErrorsWrapped(t *testing.T) {
	lb := &enginetest.Loopback{FailAfter: 1}
	e := engine.New(lb.Options()...)
	require.NoError(t, e.Initialize(context.Background()))

	_, err := e.Encode(context.Background(), engine.JPEG, gray8(2, 2), engine.DefaultEncodeParams())
	require.NoError(t, err)
	_, err = e.Encode(context.Background(), engine.JPEG, gray8(2, 2), engine.DefaultEncodeParams())
	assert.ErrorIs(t, err, dcmerr.ErrEngine)
	assert.ErrorIs(t, err, enginetest.ErrInjected)

	var ee *dcmerr.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "jpeg", ee.Family)
	assert.Equal(t, "encode", ee.Op)
}

func TestDecodeKeepsBackendLabel(t *testing.T) {
	lb := &enginetest.Loopback{}
	e := engine.New(lb.Options()...)
	require.NoError(t, e.Initialize(context.Background()))

	c := exchange.Context{
		Width: 1, Height: 1, BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 3,
		PhotometricInterpretation: "YBR_FULL_422",
		EncodedBuffer:             []byte{1, 2, 3},
	}
	for _, toRGB := range []bool{true, false} {
		out, err := e.Decode(context.Background(), engine.JPEG, c, engine.DecodeParams{ConvertColorspaceToRGB: toRGB})
		require.NoError(t, err)
		assert.Equal(t, "YBR_FULL_422", out.PhotometricInterpretation)
		assert.Equal(t, []byte{1, 2, 3}, out.DecodedBuffer)
	}
	assert.Len(t, lb.Decodes, 2)
}

func TestTraceLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := engine.New(engine.WithLogger(logger), engine.WithTrace(true))
	require.NoError(t, e.Initialize(context.Background()))

	_, err := e.Encode(context.Background(), engine.RLE, gray8(4, 4), engine.DefaultEncodeParams())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "codec engine initialized")
	assert.Contains(t, logs.String(), "family=rle")
	assert.Contains(t, logs.String(), "encoded frame")
}

func TestDefaultEncodeParams(t *testing.T) {
	p := engine.DefaultEncodeParams()
	assert.False(t, p.Lossy)
	assert.Equal(t, 90, p.Quality)
	assert.Equal(t, 1, p.Predictor)
	assert.Equal(t, 10, p.AllowedLossyError)
	assert.Equal(t, engine.LRCP, p.ProgressionOrder)
	assert.Equal(t, 20, p.Rate)
	assert.True(t, p.AllowMCT)
	assert.Equal(t, engine.SampleFactorDefault, p.SampleFactor)
}

func TestFamilyString(t *testing.T) {
	assert.Equal(t, "jpeg-ls", engine.JPEGLS.String())
	assert.Equal(t, "htj2k", engine.HTJ2K.String())
	assert.Equal(t, "unknown", engine.Family(99).String())
	assert.Equal(t, "RPCL", engine.RPCL.String())
}

func TestJPEGRejectsUnsupportedParameters(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Initialize(context.Background()))
	defer e.Release()

	tests := []struct {
		name   string
		modify func(*engine.EncodeParams)
	}{
		{"Smoothing lossy", func(p *engine.EncodeParams) { p.Lossy = true; p.SmoothingFactor = 10 }},
		{"Smoothing lossless", func(p *engine.EncodeParams) { p.SmoothingFactor = 1 }},
		{"Point transform", func(p *engine.EncodeParams) { p.PointTransform = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := engine.DefaultEncodeParams()
			tt.modify(&p)
			_, err := e.Encode(context.Background(), engine.JPEG, gray8(4, 4), p)
			assert.ErrorIs(t, err, dcmerr.ErrUnsupportedParameter)
		})
	}

	_, err := e.Encode(context.Background(), engine.JPEG, gray8(4, 4), engine.DefaultEncodeParams())
	assert.NoError(t, err)
}
