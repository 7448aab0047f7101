package engine

import (
	"fmt"

	lslossless "github.com/cocosip/go-dicom-codec/jpegls/lossless"
	"github.com/cocosip/go-dicom-codec/jpegls/nearlossless"

	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// jpeglsBackend selects the lossless or near-lossless coder from NEAR
type jpeglsBackend struct{}

func (jpeglsBackend) Encode(c exchange.Context, p EncodeParams) (exchange.Context, error) {
	buf, depth, err := prepare(c)
	if err != nil {
		return c, err
	}
	var out []byte
	if p.Lossy && p.AllowedLossyError > 0 {
		out, err = nearlossless.Encode(buf, c.Width, c.Height, c.SamplesPerPixel, depth, p.AllowedLossyError)
	} else {
		out, err = lslossless.Encode(buf, c.Width, c.Height, c.SamplesPerPixel, depth)
	}
	if err != nil {
		return c, err
	}
	c.EncodedBuffer = out
	return c, nil
}

func (jpeglsBackend) Decode(c exchange.Context, _ DecodeParams) (exchange.Context, error) {
	near, err := jpeglsNear(c.EncodedBuffer)
	if err != nil {
		return c, err
	}
	var pix []byte
	if near > 0 {
		pix, _, _, _, _, _, err = nearlossless.Decode(c.EncodedBuffer)
	} else {
		pix, _, _, _, _, err = lslossless.Decode(c.EncodedBuffer)
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

// jpeglsNear reads the NEAR parameter of the first scan header
func jpeglsNear(data []byte) (int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, fmt.Errorf("missing jpeg-ls SOI marker")
	}
	for i := 2; i+3 < len(data); {
		if data[i] != 0xFF {
			return 0, fmt.Errorf("expected marker at offset %d", i)
		}
		m := data[i+1]
		if m == 0xFF {
			i++
			continue
		}
		size := int(data[i+2])<<8 | int(data[i+3])
		if m == 0xDA {
			if i+4 >= len(data) {
				break
			}
			ns := int(data[i+4])
			at := i + 5 + 2*ns
			if at >= len(data) || size < 6+2*ns {
				return 0, fmt.Errorf("short jpeg-ls scan header")
			}
			return int(data[at]), nil
		}
		i += 2 + size
	}
	return 0, fmt.Errorf("no jpeg-ls scan header")
}
