package engine

import (
	"github.com/cocosip/go-dicom-codec/jpeg2000"

	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// j2kBackend is Part 1 JPEG 2000. Three component images always carry the
// multi-component transform; the coder picks RCT or ICT from Lossless.
type j2kBackend struct{}

func (j2kBackend) Encode(c exchange.Context, p EncodeParams) (exchange.Context, error) {
	buf, depth, err := prepare(c)
	if err != nil {
		return c, err
	}
	params := jpeg2000.DefaultEncodeParams(c.Width, c.Height, c.SamplesPerPixel, depth, false)
	params.NumLevels = levels(c.Width, c.Height)
	params.Lossless = !p.Lossy
	params.ProgressionOrder = uint8(p.ProgressionOrder)
	if p.Lossy {
		params.Quality = qualityFromRate(p.Rate)
	}
	out, err := jpeg2000.NewEncoder(params).Encode(buf)
	if err != nil {
		return c, err
	}
	c.EncodedBuffer = out
	return c, nil
}

func (j2kBackend) Decode(c exchange.Context, _ DecodeParams) (exchange.Context, error) {
	dec := jpeg2000.NewDecoder()
	if err := dec.Decode(c.EncodedBuffer); err != nil {
		return c, err
	}
	out, err := restore(c, dec.GetPixelData())
	if err != nil {
		return c, err
	}
	c.DecodedBuffer = out
	return c, nil
}
