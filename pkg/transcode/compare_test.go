package transcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
)

func TestCompareLossless(t *testing.T) {
	tc := New(realEngine(t))
	px := make([]byte, 16*16*2)
	for i := 0; i < len(px); i += 2 {
		px[i] = byte(i / 2)
		px[i+1] = byte(i / 64)
	}
	ds, err := dicom.Build(
		dicom.WithImage(dicom.Image{Rows: 16, Columns: 16, BitsAllocated: 16, BitsStored: 12}),
		dicom.WithNativePixels(px),
	)
	require.NoError(t, err)
	before := ds.Clone()

	targets := []transfer.Syntax{transfer.RLELossless, transfer.JPEGLSLossless, transfer.ExplicitVRBigEndian}
	res, err := tc.Compare(context.Background(), ds, transfer.ExplicitVRLittleEndian, targets, codec.DefaultParams())
	require.NoError(t, err)
	require.Len(t, res, len(targets))
	for i, c := range res {
		require.NoError(t, c.Err, c.Syntax.Name())
		assert.Equal(t, targets[i], c.Syntax)
		assert.Equal(t, len(px), c.UncompressedSize)
		assert.Zero(t, c.MaxError, c.Syntax.Name())
		assert.Zero(t, c.MeanError, c.Syntax.Name())
		assert.Contains(t, c.String(), "ratio")
	}
	assert.InDelta(t, 1.0, res[2].Ratio, 1e-9)
	assert.Equal(t, before, ds)
}

func TestCompareReportsPerTarget(t *testing.T) {
	_, tc := loopback(t)
	ds, err := dicom.Build(
		dicom.WithImage(dicom.Image{Rows: 2, Columns: 2, BitsAllocated: 16, BitsStored: 12}),
		dicom.WithNativePixels(make([]byte, 8)),
	)
	require.NoError(t, err)
	res, err := tc.Compare(context.Background(), ds, transfer.ExplicitVRLittleEndian,
		[]transfer.Syntax{transfer.JPEGBaseline, transfer.RLELossless}, codec.DefaultParams())
	require.NoError(t, err)
	assert.ErrorIs(t, res[0].Err, dcmerr.ErrUnsupportedBitDepth)
	assert.NoError(t, res[1].Err)
	assert.Contains(t, res[0].String(), "JPEG Baseline")
}

func TestSampleError(t *testing.T) {
	maxErr, mean := sampleError([]byte{10, 20, 30}, []byte{12, 20, 27}, 8, false)
	assert.Equal(t, 3, maxErr)
	assert.InDelta(t, 5.0/3, mean, 1e-9)

	maxErr, _ = sampleError([]byte{0xff, 0xff}, []byte{0x01, 0x00}, 16, true)
	assert.Equal(t, 2, maxErr)

	maxErr, mean = sampleError(nil, []byte{1}, 8, false)
	assert.Zero(t, maxErr)
	assert.Zero(t, mean)
}
