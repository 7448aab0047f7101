// Package exchange defines the per-frame record passed between the codec
// pipeline and an entropy engine backend.
package exchange

import (
	"fmt"
	"strings"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

// Context carries one frame and its geometry. Encoding reads DecodedBuffer and
// fills EncodedBuffer, decoding does the reverse; a backend may adjust the
// geometry to describe what it produced.
type Context struct {
	Width                     int
	Height                    int
	BitsAllocated             int
	BitsStored                int
	SamplesPerPixel           int
	PixelRepresentation       int
	PlanarConfiguration       int
	PhotometricInterpretation string

	EncodedBuffer []byte
	DecodedBuffer []byte
}

// FromDataset builds a context from the geometry attributes of ds
func FromDataset(ds *dicom.Dataset) Context {
	var c Context
	c.Width, _ = ds.Int(tag.Columns)
	c.Height, _ = ds.Int(tag.Rows)
	c.BitsAllocated, _ = ds.Int(tag.BitsAllocated)
	c.BitsStored, _ = ds.Int(tag.BitsStored)
	c.SamplesPerPixel, _ = ds.Int(tag.SamplesPerPixel)
	c.PixelRepresentation, _ = ds.Int(tag.PixelRepresentation)
	c.PlanarConfiguration, _ = ds.Int(tag.PlanarConfiguration)
	c.PhotometricInterpretation, _ = ds.String(tag.PhotometricInterpretation)
	return c
}

// Apply merges the geometry back into ds. PlanarConfiguration is only
// written for color images or when ds already carries it.
func (c Context) Apply(ds *dicom.Dataset) {
	ds.SetInt(tag.Columns, c.Width)
	ds.SetInt(tag.Rows, c.Height)
	ds.SetInt(tag.BitsAllocated, c.BitsAllocated)
	ds.SetInt(tag.BitsStored, c.BitsStored)
	ds.SetInt(tag.SamplesPerPixel, c.SamplesPerPixel)
	ds.SetInt(tag.PixelRepresentation, c.PixelRepresentation)
	if c.PhotometricInterpretation != "" {
		ds.SetString(tag.PhotometricInterpretation, c.PhotometricInterpretation)
	}
	if c.SamplesPerPixel > 1 || ds.Has(tag.PlanarConfiguration) {
		ds.SetInt(tag.PlanarConfiguration, c.PlanarConfiguration)
	}
}

// Signed reports whether samples are two's complement
func (c Context) Signed() bool {
	return c.PixelRepresentation != 0
}

// BytesAllocated returns the storage size of one sample
func (c Context) BytesAllocated() int {
	return (c.BitsAllocated + 7) / 8
}

// FrameSize returns the size of an interleaved native frame
func (c Context) FrameSize() int {
	return c.Width * c.Height * c.SamplesPerPixel * c.BytesAllocated()
}

func (c Context) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Width: %d;  Height: %d\n", c.Width, c.Height)
	fmt.Fprintf(&b, "Bits Allocated: %d;  Stored: %d;  Signed: %t\n", c.BitsAllocated, c.BitsStored, c.Signed())
	fmt.Fprintf(&b, "Samples Per Pixel: %d;  Planar: %d;  Photometric Interpretation: %s\n",
		c.SamplesPerPixel, c.PlanarConfiguration, c.PhotometricInterpretation)
	fmt.Fprintf(&b, "Encoded: %d bytes;  Decoded: %d bytes", len(c.EncodedBuffer), len(c.DecodedBuffer))
	return b.String()
}
