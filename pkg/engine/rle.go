package engine

import (
	"bytes"

	"github.com/jpfielding/dcmtx.go/pkg/compress/rle"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// rleBackend works on raw sample bytes, so signed data needs no shift.
// Segments are written per sample, planar frames are interleaved first.
type rleBackend struct{}

func (rleBackend) Encode(c exchange.Context, _ EncodeParams) (exchange.Context, error) {
	in := c.DecodedBuffer
	if c.PlanarConfiguration == 1 && c.SamplesPerPixel > 1 {
		in = reorder(in, c.Width*c.Height, c.SamplesPerPixel, c.BytesAllocated(), false)
	}
	var buf bytes.Buffer
	if err := rle.Encode(&buf, in, c.Width, c.Height, c.SamplesPerPixel, c.BytesAllocated()); err != nil {
		return c, err
	}
	c.EncodedBuffer = buf.Bytes()
	return c, nil
}

func (rleBackend) Decode(c exchange.Context, _ DecodeParams) (exchange.Context, error) {
	out, err := rle.Decode(c.EncodedBuffer, c.Width, c.Height, c.SamplesPerPixel, c.BytesAllocated())
	if err != nil {
		return c, err
	}
	if c.PlanarConfiguration == 1 && c.SamplesPerPixel > 1 {
		out = reorder(out, c.Width*c.Height, c.SamplesPerPixel, c.BytesAllocated(), true)
	}
	c.DecodedBuffer = out
	return c, nil
}

// reorder moves whole samples of size bytes between interleaved and planar order
func reorder(in []byte, pixels, samples, size int, toPlanar bool) []byte {
	out := make([]byte, pixels*samples*size)
	for n := range pixels {
		for s := range samples {
			il := (n*samples + s) * size
			pl := (n + pixels*s) * size
			if toPlanar {
				copy(out[pl:pl+size], in[il:il+size])
			} else {
				copy(out[il:il+size], in[pl:pl+size])
			}
		}
	}
	return out
}
