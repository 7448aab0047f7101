package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

func TestBuildImage(t *testing.T) {
	ds, err := Build(
		WithString(tag.SOPInstanceUID, "1.2.3"),
		WithImage(Image{Rows: 2, Columns: 3, Frames: 2, BitsAllocated: 16, BitsStored: 12, SamplesPerPixel: 1}),
		WithNativePixels(make([]byte, 24)),
	)
	require.NoError(t, err)

	for tg, want := range map[Tag]int{
		tag.Rows: 2, tag.Columns: 3, tag.NumberOfFrames: 2,
		tag.BitsAllocated: 16, tag.BitsStored: 12, tag.HighBit: 11, tag.SamplesPerPixel: 1,
	} {
		got, ok := ds.Int(tg)
		assert.True(t, ok, tg)
		assert.Equal(t, want, got, tg)
	}
	pi, _ := ds.String(tag.PhotometricInterpretation)
	assert.Equal(t, "MONOCHROME2", pi)
	assert.False(t, ds.Has(tag.PlanarConfiguration))
	assert.Equal(t, "OW", ds.Elements[tag.PixelData].VR)
	pd, ok := ds.PixelData()
	require.True(t, ok)
	assert.False(t, pd.Encapsulated)
	assert.Equal(t, 24, pd.Len())
}

func TestBuildColorFragments(t *testing.T) {
	ds, err := Build(
		WithImage(Image{Rows: 1, Columns: 1, BitsAllocated: 8, SamplesPerPixel: 3, PlanarConfiguration: 1}),
		WithFragments([]byte{1, 2}, []byte{3, 4}),
		WithSequence(tag.Tag{Group: 0x0008, Element: 0x1140}, NewDataset()),
	)
	require.NoError(t, err)
	pi, _ := ds.String(tag.PhotometricInterpretation)
	assert.Equal(t, "RGB", pi)
	pc, _ := ds.Int(tag.PlanarConfiguration)
	assert.Equal(t, 1, pc)
	pd, _ := ds.PixelData()
	assert.True(t, pd.Encapsulated)
	assert.Len(t, pd.Buffers, 2)
	assert.Equal(t, "SQ", ds.Elements[tag.Tag{Group: 0x0008, Element: 0x1140}].VR)
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"NoRows", []Option{WithImage(Image{Columns: 1, BitsAllocated: 8})}},
		{"OddBits", []Option{WithImage(Image{Rows: 1, Columns: 1, BitsAllocated: 12})}},
		{"StoredOverAllocated", []Option{WithImage(Image{Rows: 1, Columns: 1, BitsAllocated: 8, BitsStored: 9})}},
		{"PixelsFirst", []Option{WithNativePixels([]byte{0})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.opts...)
			assert.Error(t, err)
		})
	}
}
