// Package frame exposes the geometry of a dataset's pixel data and slices out
// the bytes of individual frames.
package frame

import (
	"fmt"
	"strings"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/pixel"
)

// View is a read-only projection of a dataset's pixel geometry
type View struct {
	Syntax                    transfer.Syntax
	Frames                    int
	Width                     int
	Height                    int
	BitsAllocated             int
	BitsStored                int
	HighBit                   int
	SamplesPerPixel           int
	PixelRepresentation       int
	PlanarConfiguration       int
	PhotometricInterpretation string
	PixelData                 *dicom.PixelData
}

// NewView reads geometry from ds, filling the usual defaults for absent attributes
func NewView(ds *dicom.Dataset, syntax transfer.Syntax) *View {
	v := &View{Syntax: syntax}
	v.Frames = intOr(ds, tag.NumberOfFrames, 1)
	v.Width, _ = ds.Int(tag.Columns)
	v.Height, _ = ds.Int(tag.Rows)
	v.BitsAllocated, _ = ds.Int(tag.BitsAllocated)
	v.BitsStored = intOr(ds, tag.BitsStored, v.BitsAllocated)
	v.HighBit = intOr(ds, tag.HighBit, v.BitsStored-1)
	v.SamplesPerPixel = intOr(ds, tag.SamplesPerPixel, 1)
	v.PixelRepresentation, _ = ds.Int(tag.PixelRepresentation)
	v.PlanarConfiguration, _ = ds.Int(tag.PlanarConfiguration)
	pi, _ := ds.String(tag.PhotometricInterpretation)
	v.PhotometricInterpretation = cleanPhotometric(pi)
	v.PixelData, _ = ds.PixelData()
	return v
}

// intOr treats absent and zero values alike
func intOr(ds *dicom.Dataset, t tag.Tag, def int) int {
	if v, ok := ds.Int(t); ok && v != 0 {
		return v
	}
	return def
}

// cleanPhotometric drops bytes outside printable ASCII and trims the result
func cleanPhotometric(pi string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return -1
		}
		return r
	}, pi))
}

// IsSigned reports whether samples are two's complement
func (v *View) IsSigned() bool {
	return v.PixelRepresentation != 0
}

// IsPlanar reports whether color samples are grouped by plane
func (v *View) IsPlanar() bool {
	return v.PlanarConfiguration != pixel.Interleaved
}

// BytesAllocated returns ceil(BitsAllocated/8)
func (v *View) BytesAllocated() int {
	return (v.BitsAllocated + 7) / 8
}

// UncompressedFrameSize returns the size of one native frame
func (v *View) UncompressedFrameSize() int {
	if v.BitsAllocated == 1 {
		return (v.Width*v.Height-1)/8 + 1
	}
	if v.PhotometricInterpretation == pixel.YBRFull422 && !v.Syntax.IsEncapsulated() {
		return v.BytesAllocated() * 2 * v.Width * v.Height
	}
	return v.Width * v.Height * v.BytesAllocated() * v.SamplesPerPixel
}

// Buffer returns the bytes of frame index. Native frames are slices of the
// stored buffer, encapsulated frames are fragments or their concatenation.
func (v *View) Buffer(index int) ([]byte, error) {
	if index < 0 || index >= v.Frames {
		return nil, dcmerr.Detail(dcmerr.ErrFrameRange, "frame %d of %d", index, v.Frames)
	}
	if v.PixelData == nil || len(v.PixelData.Buffers) == 0 {
		return nil, dcmerr.ErrMissingData
	}
	if v.Width == 0 || v.Height == 0 {
		return nil, dcmerr.Detail(dcmerr.ErrInvalidGeometry, "width %d, height %d", v.Width, v.Height)
	}
	if v.BitsAllocated == 0 || v.BitsStored == 0 {
		return nil, dcmerr.Detail(dcmerr.ErrInvalidGeometry,
			"bits allocated %d, bits stored %d", v.BitsAllocated, v.BitsStored)
	}
	if v.PhotometricInterpretation == "" {
		return nil, dcmerr.Detail(dcmerr.ErrInvalidGeometry, "photometric interpretation is empty")
	}
	profile, ok := transfer.Lookup(v.Syntax)
	if !ok {
		return nil, dcmerr.NewSyntaxError(string(v.Syntax), dcmerr.ErrUnsupportedSyntax)
	}

	if !profile.Encapsulated {
		size := v.UncompressedFrameSize()
		data := v.PixelData.Buffers[0]
		start := min(index*size, len(data))
		end := min(start+size, len(data))
		return data[start:end], nil
	}
	return v.fragments(index)
}

func (v *View) fragments(index int) ([]byte, error) {
	fragments := v.PixelData.Buffers
	if index >= len(fragments) {
		return nil, dcmerr.Detail(dcmerr.ErrUnsupportedFragmentation,
			"frame %d with %d fragments", index, len(fragments))
	}
	if v.Frames == 1 {
		return v.PixelData.Bytes(), nil
	}
	if len(fragments) == v.Frames {
		return fragments[index], nil
	}
	return nil, dcmerr.Detail(dcmerr.ErrUnsupportedFragmentation,
		"%d fragments for %d frames", len(fragments), v.Frames)
}

func (v *View) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pixel Data: %s\n", v.Syntax)
	fmt.Fprintf(&b, "    Photometric Interpretation: %s\n", v.PhotometricInterpretation)
	fmt.Fprintf(&b, "    Bits Allocated: %d;  Stored: %d;  High: %d;  Signed: %t\n",
		v.BitsAllocated, v.BitsStored, v.HighBit, v.IsSigned())
	fmt.Fprintf(&b, "    Width: %d;  Height: %d;  Frames: %d", v.Width, v.Height, v.Frames)
	return b.String()
}

// Buffer returns frame index of ds encoded in syntax
func Buffer(ds *dicom.Dataset, syntax transfer.Syntax, index int) ([]byte, error) {
	return NewView(ds, syntax).Buffer(index)
}
