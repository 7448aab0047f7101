package engine

import (
	"fmt"

	"github.com/cocosip/go-dicom-codec/jpeg/baseline"
	"github.com/cocosip/go-dicom-codec/jpeg/lossless"
	"github.com/cocosip/go-dicom-codec/jpeg/lossless14sv1"

	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// JPEG start of frame markers
const (
	sofBaseline = 0xC0
	sofExtended = 0xC1
	sofLossless = 0xC3
)

// jpegBackend covers process 1 (lossy) and process 14 (lossless).
// The baseline coder always writes YCbCr and returns RGB.
type jpegBackend struct{}

func (jpegBackend) Encode(c exchange.Context, p EncodeParams) (exchange.Context, error) {
	if p.SmoothingFactor != 0 {
		return c, dcmerr.Detail(dcmerr.ErrUnsupportedParameter, "smoothing factor %d", p.SmoothingFactor)
	}
	if p.Lossy {
		if c.BitsAllocated != 8 {
			return c, dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth, "baseline jpeg needs 8 bits allocated, have %d", c.BitsAllocated)
		}
		buf, _, err := prepare(c)
		if err != nil {
			return c, err
		}
		out, err := baseline.Encode(buf, c.Width, c.Height, c.SamplesPerPixel, p.Quality)
		if err != nil {
			return c, err
		}
		c.EncodedBuffer = out
		return c, nil
	}

	if p.PointTransform != 0 {
		return c, dcmerr.Detail(dcmerr.ErrUnsupportedParameter, "point transform %d", p.PointTransform)
	}
	buf, depth, err := prepare(c)
	if err != nil {
		return c, err
	}
	var out []byte
	switch p.Predictor {
	case 0, 1:
		out, err = lossless14sv1.Encode(buf, c.Width, c.Height, c.SamplesPerPixel, depth)
	default:
		out, err = lossless.Encode(buf, c.Width, c.Height, c.SamplesPerPixel, depth, p.Predictor)
	}
	if err != nil {
		return c, err
	}
	c.EncodedBuffer = out
	return c, nil
}

func (jpegBackend) Decode(c exchange.Context, _ DecodeParams) (exchange.Context, error) {
	sof, err := jpegFrameMarker(c.EncodedBuffer)
	if err != nil {
		return c, err
	}
	var pix []byte
	switch sof {
	case sofBaseline, sofExtended:
		var comps int
		pix, _, _, comps, err = baseline.Decode(c.EncodedBuffer)
		if err == nil && comps == 3 {
			c.PhotometricInterpretation = "RGB"
		}
	case sofLossless:
		pix, _, _, _, _, err = lossless.Decode(c.EncodedBuffer)
	default:
		return c, fmt.Errorf("unsupported jpeg process, SOF marker 0x%02X", sof)
	}
	if err != nil {
		return c, err
	}
	out, err := restore(c, pix)
	if err != nil {
		return c, err
	}
	c.DecodedBuffer = out
	return c, nil
}

// jpegFrameMarker walks the marker segments up to the first SOFn
func jpegFrameMarker(data []byte) (byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, fmt.Errorf("missing jpeg SOI marker")
	}
	for i := 2; i+3 < len(data); {
		if data[i] != 0xFF {
			return 0, fmt.Errorf("expected marker at offset %d", i)
		}
		m := data[i+1]
		switch {
		case m == 0xFF:
			i++
			continue
		case m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC:
			return m, nil
		case m == 0xD9 || m == 0xDA:
			return 0, fmt.Errorf("no frame header before marker 0x%02X", m)
		}
		i += 2 + (int(data[i+2])<<8 | int(data[i+3]))
	}
	return 0, fmt.Errorf("no jpeg frame header")
}
