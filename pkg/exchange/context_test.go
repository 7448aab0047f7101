package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

func TestFromDatasetApply(t *testing.T) {
	ds := dicom.NewDataset()
	ds.SetInt(tag.Columns, 3)
	ds.SetInt(tag.Rows, 2)
	ds.SetInt(tag.BitsAllocated, 16)
	ds.SetInt(tag.BitsStored, 12)
	ds.SetInt(tag.SamplesPerPixel, 1)
	ds.SetInt(tag.PixelRepresentation, 1)
	ds.SetString(tag.PhotometricInterpretation, "MONOCHROME2")

	c := FromDataset(ds)
	assert.Equal(t, Context{
		Width: 3, Height: 2, BitsAllocated: 16, BitsStored: 12,
		SamplesPerPixel: 1, PixelRepresentation: 1,
		PhotometricInterpretation: "MONOCHROME2",
	}, c)
	assert.True(t, c.Signed())
	assert.Equal(t, 12, c.FrameSize())

	c.BitsStored = 16
	c.Apply(ds)
	bs, _ := ds.Int(tag.BitsStored)
	assert.Equal(t, 16, bs)
	assert.False(t, ds.Has(tag.PlanarConfiguration), "grayscale keeps planar unset")

	c.SamplesPerPixel = 3
	c.PhotometricInterpretation = "RGB"
	c.Apply(ds)
	pc, ok := ds.Int(tag.PlanarConfiguration)
	assert.True(t, ok)
	assert.Equal(t, 0, pc)
}

func TestString(t *testing.T) {
	c := Context{Width: 1, Height: 1, BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 1,
		PhotometricInterpretation: "MONOCHROME2", DecodedBuffer: []byte{1}}
	assert.Contains(t, c.String(), "Decoded: 1 bytes")
	assert.Contains(t, c.String(), "Photometric Interpretation: MONOCHROME2")
}
