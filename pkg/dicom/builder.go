package dicom

import (
	"fmt"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

// Option configures a Dataset during construction
type Option func(*Dataset) error

// Build creates a Dataset with the given options applied in order
func Build(opts ...Option) (*Dataset, error) {
	ds := NewDataset()
	for _, opt := range opts {
		if err := opt(ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// WithElement stores value under t using the dictionary VR
func WithElement(t Tag, value any) Option {
	return func(ds *Dataset) error {
		ds.Put(&Element{Tag: t, VR: t.LookupVR(), Value: value})
		return nil
	}
}

// WithString stores s under t
func WithString(t Tag, s string) Option {
	return func(ds *Dataset) error {
		ds.SetString(t, s)
		return nil
	}
}

// WithInt stores v under t
func WithInt(t Tag, v int) Option {
	return func(ds *Dataset) error {
		ds.SetInt(t, v)
		return nil
	}
}

// WithSequence stores items as a sequence under t
func WithSequence(t Tag, items ...*Dataset) Option {
	return func(ds *Dataset) error {
		ds.Put(&Element{Tag: t, VR: "SQ", Value: items})
		return nil
	}
}

// Image is the Image Pixel module geometry
type Image struct {
	Rows                int
	Columns             int
	Frames              int // written as NumberOfFrames when above 1
	BitsAllocated       int
	BitsStored          int // defaults to BitsAllocated
	SamplesPerPixel     int // defaults to 1
	PixelRepresentation int
	PlanarConfiguration int
	Photometric         string // defaults to MONOCHROME2 or RGB
}

// WithImage writes the pixel geometry attributes
func WithImage(img Image) Option {
	return func(ds *Dataset) error {
		if img.Rows <= 0 || img.Columns <= 0 {
			return fmt.Errorf("image needs rows and columns, have %dx%d", img.Columns, img.Rows)
		}
		if img.BitsAllocated != 1 && img.BitsAllocated%8 != 0 {
			return fmt.Errorf("bits allocated %d is not 1 or a multiple of 8", img.BitsAllocated)
		}
		if img.BitsStored == 0 {
			img.BitsStored = img.BitsAllocated
		}
		if img.BitsStored > img.BitsAllocated {
			return fmt.Errorf("bits stored %d exceeds bits allocated %d", img.BitsStored, img.BitsAllocated)
		}
		if img.SamplesPerPixel == 0 {
			img.SamplesPerPixel = 1
		}
		if img.Photometric == "" {
			img.Photometric = "MONOCHROME2"
			if img.SamplesPerPixel == 3 {
				img.Photometric = "RGB"
			}
		}
		ds.SetInt(tag.Rows, img.Rows)
		ds.SetInt(tag.Columns, img.Columns)
		ds.SetInt(tag.BitsAllocated, img.BitsAllocated)
		ds.SetInt(tag.BitsStored, img.BitsStored)
		ds.SetInt(tag.HighBit, img.BitsStored-1)
		ds.SetInt(tag.SamplesPerPixel, img.SamplesPerPixel)
		ds.SetInt(tag.PixelRepresentation, img.PixelRepresentation)
		ds.SetString(tag.PhotometricInterpretation, img.Photometric)
		if img.SamplesPerPixel > 1 {
			ds.SetInt(tag.PlanarConfiguration, img.PlanarConfiguration)
		}
		if img.Frames > 1 {
			ds.SetInt(tag.NumberOfFrames, img.Frames)
		}
		return nil
	}
}

// WithNativePixels stores data as native pixel data, OW when more than
// 8 bits are allocated. WithImage must come first.
func WithNativePixels(data []byte) Option {
	return func(ds *Dataset) error {
		ba, ok := ds.Int(tag.BitsAllocated)
		if !ok {
			return fmt.Errorf("native pixels need bits allocated")
		}
		vr := "OB"
		if ba > 8 {
			vr = "OW"
		}
		ds.SetPixelData(vr, [][]byte{data}, false)
		return nil
	}
}

// WithFragments stores encapsulated pixel data, one fragment per buffer
func WithFragments(fragments ...[]byte) Option {
	return func(ds *Dataset) error {
		ds.SetPixelData("OB", fragments, true)
		return nil
	}
}
