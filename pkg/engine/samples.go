package engine

import (
	"encoding/binary"

	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
	"github.com/jpfielding/dcmtx.go/pkg/pixel"
)

// The cocosip and go-jpeg2000 coders take unsigned samples at their stored
// precision: one byte up to 8 bits, two little endian bytes above that.
// prepare and restore move frames in and out of that layout.

// prepare returns a copy of c.DecodedBuffer masked to BitsStored, shifted to
// offset binary when signed and narrowed to bytes when a 16 bit container
// holds 8 or fewer stored bits. It also returns the coder bit depth.
func prepare(c exchange.Context) ([]byte, int, error) {
	ba, bs := c.BitsAllocated, c.BitsStored
	if ba != 8 && ba != 16 {
		return nil, 0, dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth, "bits allocated %d", ba)
	}
	want := c.Width * c.Height * c.SamplesPerPixel * c.BytesAllocated()
	if len(c.DecodedBuffer) < want {
		return nil, 0, dcmerr.Detail(dcmerr.ErrMissingData, "frame has %d bytes, need %d", len(c.DecodedBuffer), want)
	}
	buf := make([]byte, want)
	copy(buf, c.DecodedBuffer)

	mask := uint16(1)<<bs - 1
	sign := uint16(0)
	if c.Signed() {
		sign = 1 << (bs - 1)
	}
	switch ba {
	case 8:
		for i := range buf {
			buf[i] = byte((uint16(buf[i]) & mask) ^ sign)
		}
	case 16:
		for i := 0; i+1 < len(buf); i += 2 {
			v := binary.LittleEndian.Uint16(buf[i:])
			binary.LittleEndian.PutUint16(buf[i:], (v&mask)^sign)
		}
		if bs <= 8 {
			buf = pixel.UnpackLow16(buf)
		}
	}
	return buf, bs, nil
}

// restore reverses prepare for a decoded coder buffer
func restore(c exchange.Context, buf []byte) ([]byte, error) {
	ba, bs := c.BitsAllocated, c.BitsStored
	want := c.Width * c.Height * c.SamplesPerPixel * c.BytesAllocated()
	if ba == 16 && bs <= 8 {
		wide := make([]byte, 2*len(buf))
		for i, v := range buf {
			wide[2*i] = v
		}
		buf = wide
	}
	if len(buf) < want {
		return nil, dcmerr.Detail(dcmerr.ErrInvalidGeometry, "decoded %d bytes, expected %d", len(buf), want)
	}
	buf = buf[:want]
	if !c.Signed() {
		return buf, nil
	}

	sign := uint16(1) << (bs - 1)
	ext := ^(uint16(1)<<bs - 1)
	switch ba {
	case 8:
		for i := range buf {
			v := uint16(buf[i]) ^ sign
			if v&sign != 0 {
				v |= ext
			}
			buf[i] = byte(v)
		}
	case 16:
		for i := 0; i+1 < len(buf); i += 2 {
			v := binary.LittleEndian.Uint16(buf[i:]) ^ sign
			if v&sign != 0 {
				v |= ext
			}
			binary.LittleEndian.PutUint16(buf[i:], v)
		}
	}
	return buf, nil
}

// levels picks a wavelet decomposition depth that fits the smaller side
func levels(width, height int) int {
	n := 0
	for side := min(width, height); side > 1 && n < 5; side >>= 1 {
		n++
	}
	return n
}

// qualityFromRate maps a compression ratio onto a 1-100 quality scale
func qualityFromRate(rate int) int {
	if rate <= 0 {
		return 100
	}
	return max(1, min(100, 100-rate))
}
