// Package pixel holds stateless transforms over raw pixel buffers: planar
// reconfiguration, YBR to RGB conversion and 16-bit unpacking. Functions never
// modify their input unless documented as in-place.
package pixel

import (
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
)

// Photometric interpretations
const (
	Monochrome1   = "MONOCHROME1"
	Monochrome2   = "MONOCHROME2"
	PaletteColor  = "PALETTE COLOR"
	RGB           = "RGB"
	YBRFull       = "YBR_FULL"
	YBRFull422    = "YBR_FULL_422"
	YBRPartial422 = "YBR_PARTIAL_422"
	YBRPartial420 = "YBR_PARTIAL_420"
	YBRICT        = "YBR_ICT"
	YBRRCT        = "YBR_RCT"
)

// Planar configurations
const (
	Interleaved = 0 // R1G1B1 R2G2B2 ...
	Planar      = 1 // R1R2... G1G2... B1B2...
)

// ChangePlanarConfiguration converts between interleaved and planar sample
// layouts. current is the layout of pixels; the result has the other one.
// Only single byte samples are supported.
func ChangePlanarConfiguration(pixels []byte, bitsAllocated, samplesPerPixel, current int) ([]byte, error) {
	if bitsAllocated != 8 {
		return nil, dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth,
			"changing planar configuration requires 8 bits allocated, got %d", bitsAllocated)
	}
	if samplesPerPixel <= 0 {
		return nil, dcmerr.Detail(dcmerr.ErrInvalidGeometry, "samples per pixel %d", samplesPerPixel)
	}

	n := len(pixels) / samplesPerPixel
	out := make([]byte, len(pixels))
	if current == Planar {
		for p := 0; p < n; p++ {
			for s := 0; s < samplesPerPixel; s++ {
				out[p*samplesPerPixel+s] = pixels[p+n*s]
			}
		}
		return out, nil
	}
	for p := 0; p < n; p++ {
		for s := 0; s < samplesPerPixel; s++ {
			out[p+n*s] = pixels[p*samplesPerPixel+s]
		}
	}
	return out, nil
}

// UnpackLow16 keeps the even (low order) byte of every 2-byte sample
func UnpackLow16(data []byte) []byte {
	out := make([]byte, len(data)/2)
	for i := range out {
		out[i] = data[i*2]
	}
	return out
}

// UnpackHigh16 keeps the odd (high order) byte of every 2-byte sample
func UnpackHigh16(data []byte) []byte {
	out := make([]byte, len(data)/2)
	for i := range out {
		out[i] = data[i*2+1]
	}
	return out
}

// SwapBytes16 reverses the byte order of every 2-byte sample in place.
// A trailing odd byte is left untouched.
func SwapBytes16(data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}
}
