package codec

import (
	"context"
	"slices"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
	"github.com/jpfielding/dcmtx.go/pkg/frame"
	"github.com/jpfielding/dcmtx.go/pkg/pixel"
)

// family groups the rules shared by syntaxes using one engine family
type family struct {
	engine engine.Family
	method string   // LossyImageCompressionMethod
	reject []string // photometric interpretations the encoder refuses

	unpackLow16 bool // 16 bit containers with 8 or fewer stored bits are narrowed
	ybrFull     bool // YBR_FULL is converted to RGB before encoding
	ybrFull422  bool // YBR_FULL_422 is converted to RGB before encoding
	planar      bool // planar frames are interleaved for the engine

	// encodedPI names the photometric interpretation of the encoded frames
	// given the source value and the one describing the buffers sent
	encodedPI func(source, sent string, p engine.EncodeParams) string
	// decodedPI normalizes the photometric interpretation after decoding
	decodedPI func(pi string) string
}

var rleFamily = &family{
	engine: engine.RLE,
}

var jpegFamily = &family{
	engine:      engine.JPEG,
	method:      "ISO_10918_1",
	reject:      []string{pixel.YBRICT, pixel.YBRRCT},
	unpackLow16: true,
	ybrFull:     true,
	ybrFull422:  true,
	planar:      true,
	// only the baseline coder moves RGB into YCbCr; lossless keeps the samples sent
	encodedPI: func(_, sent string, p engine.EncodeParams) string {
		if !p.Lossy || sent != pixel.RGB {
			return sent
		}
		if p.SampleFactor == engine.SampleFactor444 {
			return pixel.YBRFull
		}
		return pixel.YBRFull422
	},
}

var jpeglsFamily = &family{
	engine:     engine.JPEGLS,
	method:     "ISO_14495_1",
	reject:     []string{pixel.YBRPartial422, pixel.YBRPartial420},
	ybrFull:    true,
	ybrFull422: true,
	planar:     true,
}

var j2kFamily = &family{
	engine:     engine.JPEG2000,
	method:     "ISO_15444_1",
	reject:     []string{pixel.YBRPartial422, pixel.YBRPartial420},
	ybrFull:    true,
	ybrFull422: true,
	planar:     true,
	encodedPI:  waveletPI,
	decodedPI: func(pi string) string {
		switch pi {
		case pixel.YBRICT, pixel.YBRRCT, pixel.YBRFull, pixel.YBRFull422, pixel.YBRPartial422:
			return pixel.RGB
		}
		return pi
	},
}

var htj2kFamily = func() *family {
	f := *j2kFamily
	f.engine = engine.HTJ2K
	return &f
}()

// waveletPI labels color frames with the multi-component transform in use
func waveletPI(source, sent string, p engine.EncodeParams) string {
	switch source {
	case pixel.RGB, pixel.YBRFull, pixel.YBRFull422:
		if !p.AllowMCT {
			return sent
		}
		if p.Lossy {
			return pixel.YBRICT
		}
		return pixel.YBRRCT
	}
	return sent
}

// sourceGeometry is the frame view plus the transforms planned for it
type sourceGeometry struct {
	*frame.View
	unpack      bool
	reconfigure bool
}

// plan validates v against the family rules and picks the transforms
func (c *Codec) plan(v *frame.View, encoding bool) (sourceGeometry, error) {
	g := sourceGeometry{View: v}
	f := c.family
	if encoding && slices.Contains(f.reject, v.PhotometricInterpretation) {
		return g, dcmerr.Detail(dcmerr.ErrUnsupportedPhotometricInterpretation,
			"%s not supported by %s encoder", v.PhotometricInterpretation, c.name)
	}
	if encoding && c.check != nil {
		if err := c.check(c, g); err != nil {
			return g, err
		}
	}
	if f.planar && v.IsPlanar() && v.SamplesPerPixel > 1 {
		if v.SamplesPerPixel != 3 || v.BitsStored > 8 {
			return g, dcmerr.Detail(dcmerr.ErrUnsupportedPlanarConfiguration,
				"planar reconfiguration needs 3 samples of at most 8 bits, have %d of %d",
				v.SamplesPerPixel, v.BitsStored)
		}
		g.reconfigure = true
	}
	g.unpack = encoding && f.unpackLow16 && v.BitsAllocated == 16 && v.BitsStored <= 8
	return g, nil
}

func contextOf(v *frame.View) exchange.Context {
	return exchange.Context{
		Width:                     v.Width,
		Height:                    v.Height,
		BitsAllocated:             v.BitsAllocated,
		BitsStored:                v.BitsStored,
		SamplesPerPixel:           v.SamplesPerPixel,
		PixelRepresentation:       v.PixelRepresentation,
		PlanarConfiguration:       v.PlanarConfiguration,
		PhotometricInterpretation: v.PhotometricInterpretation,
	}
}

// prepare applies the planned transforms to one native frame
func (c *Codec) prepare(g sourceGeometry, buf []byte) (exchange.Context, error) {
	fc := contextOf(g.View)
	var err error
	if g.unpack {
		buf = pixel.UnpackLow16(buf)
		fc.BitsAllocated = 8
	}
	if g.reconfigure {
		if buf, err = pixel.ChangePlanarConfiguration(buf, fc.BitsAllocated, fc.SamplesPerPixel, pixel.Planar); err != nil {
			return fc, err
		}
		fc.PlanarConfiguration = pixel.Interleaved
	}
	switch {
	case c.family.ybrFull && fc.PhotometricInterpretation == pixel.YBRFull:
		buf = pixel.YBRFullToRGB(buf)
		fc.PhotometricInterpretation = pixel.RGB
	case c.family.ybrFull422 && fc.PhotometricInterpretation == pixel.YBRFull422:
		buf = pixel.YBRFull422ToRGB(buf, fc.Width)
		fc.PhotometricInterpretation = pixel.RGB
	}
	fc.DecodedBuffer = buf
	return fc, nil
}

func (c *Codec) encode(ctx context.Context, eng Engine, ds *dicom.Dataset, source transfer.Syntax, params engine.EncodeParams) error {
	v := frame.NewView(ds, source)
	g, err := c.plan(v, true)
	if err != nil {
		return dcmerr.NewSyntaxError(string(c.syntax), err)
	}
	p := params
	if c.force != nil {
		c.force(&p)
	}
	before := 0
	if v.PixelData != nil {
		before = v.PixelData.Len()
	}

	buffers := make([][]byte, v.Frames)
	var last exchange.Context
	after := 0
	for i := range v.Frames {
		buf, err := v.Buffer(i)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		in, err := c.prepare(g, buf)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		out, err := eng.Encode(ctx, c.family.engine, in, p)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		buffers[i] = padEven(out.EncodedBuffer)
		after += len(buffers[i])
		last = out
	}

	last.Apply(ds)
	if c.family.encodedPI != nil {
		ds.SetString(tag.PhotometricInterpretation, c.family.encodedPI(v.PhotometricInterpretation, last.PhotometricInterpretation, p))
	}
	ds.SetPixelData("OB", buffers, true)
	if p.Lossy {
		setLossy(ds, c.family.method, before, after)
	}
	return nil
}

func (c *Codec) decode(ctx context.Context, eng Engine, ds *dicom.Dataset, params engine.DecodeParams) error {
	v := frame.NewView(ds, c.syntax)
	g, err := c.plan(v, false)
	if err != nil {
		return dcmerr.NewSyntaxError(string(c.syntax), err)
	}
	p := params
	if c.toRGB != nil && c.toRGB(v.PhotometricInterpretation) {
		p.ConvertColorspaceToRGB = true
	}

	frames := make([][]byte, v.Frames)
	var last exchange.Context
	size := 0
	for i := range v.Frames {
		buf, err := v.Buffer(i)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		in := contextOf(v)
		in.EncodedBuffer = buf
		out, err := eng.Decode(ctx, c.family.engine, in, p)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		if p.ConvertColorspaceToRGB {
			out = decodedToRGB(out)
		}
		// frames join back to back; the writer pads the joined value
		dec := out.DecodedBuffer
		if n := out.FrameSize(); out.BitsAllocated > 1 && len(dec) > n {
			dec = dec[:n]
		}
		if g.reconfigure {
			if dec, err = pixel.ChangePlanarConfiguration(dec, out.BitsAllocated, out.SamplesPerPixel, pixel.Interleaved); err != nil {
				return dcmerr.NewFrameError(i, err)
			}
		}
		frames[i] = dec
		size += len(dec)
		last = out
	}

	joined := make([]byte, 0, size)
	for _, f := range frames {
		joined = append(joined, f...)
	}
	last.Apply(ds)
	if c.family.decodedPI != nil {
		ds.SetString(tag.PhotometricInterpretation, c.family.decodedPI(last.PhotometricInterpretation))
	}
	ds.SetPixelData(nativeVR(last.BitsAllocated), [][]byte{joined}, false)
	return nil
}

// decodedToRGB converts decoded YBR_FULL samples the engine left untouched.
// Decoded YBR_FULL_422 frames carry full chroma so they convert the same way.
func decodedToRGB(c exchange.Context) exchange.Context {
	if c.SamplesPerPixel != 3 || c.BitsAllocated != 8 {
		return c
	}
	switch c.PhotometricInterpretation {
	case pixel.YBRFull, pixel.YBRFull422:
		c.DecodedBuffer = pixel.YBRFullToRGB(c.DecodedBuffer)
		c.PhotometricInterpretation = pixel.RGB
	}
	return c
}

// swapPixelData flips 16 bit samples between little and big endian order.
// The swap is its own inverse so it serves both directions.
func swapPixelData(ds *dicom.Dataset, syntax transfer.Syntax) error {
	v := frame.NewView(ds, syntax)
	if v.BitsAllocated != 8 && v.BitsAllocated != 16 {
		return dcmerr.NewSyntaxError(string(syntax),
			dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth, "byte swap of %d bit samples", v.BitsAllocated))
	}
	joined := make([]byte, 0, v.Frames*v.UncompressedFrameSize())
	for i := range v.Frames {
		buf, err := v.Buffer(i)
		if err != nil {
			return dcmerr.NewFrameError(i, err)
		}
		joined = append(joined, buf...)
	}
	if v.BitsAllocated == 16 {
		pixel.SwapBytes16(joined)
	}
	ds.SetPixelData(nativeVR(v.BitsAllocated), [][]byte{joined}, false)
	return nil
}

func nativeVR(bitsAllocated int) string {
	if bitsAllocated <= 8 {
		return "OB"
	}
	return "OW"
}

func padEven(b []byte) []byte {
	if len(b)%2 != 0 {
		return append(b, 0x00)
	}
	return b
}
