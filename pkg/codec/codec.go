// Package codec converts the pixel data of a dataset between one transfer
// syntax and native little endian. Each syntax maps to a strategy made of
// legality checks, pixel transforms, an engine family and metadata rules.
package codec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// Engine runs single frame entropy coding; *engine.Engine satisfies it
type Engine interface {
	Encode(ctx context.Context, family engine.Family, c exchange.Context, p engine.EncodeParams) (exchange.Context, error)
	Decode(ctx context.Context, family engine.Family, c exchange.Context, p engine.DecodeParams) (exchange.Context, error)
}

// Params carries both directions so a transcoding can pass one value through
type Params struct {
	engine.EncodeParams `yaml:",inline"`
	engine.DecodeParams `yaml:",inline"`
}

// DefaultParams returns the engine defaults
func DefaultParams() Params {
	return Params{EncodeParams: engine.DefaultEncodeParams()}
}

type kind int

const (
	native kind = iota
	bigEndian
	encapsulated
)

// Codec encodes to and decodes from one transfer syntax
type Codec struct {
	syntax transfer.Syntax
	name   string
	kind   kind
	family *family

	// force pins the parameters the syntax implies, e.g. lossy or predictor
	force func(*engine.EncodeParams)
	// check adds syntax specific legality on top of the family rules
	check func(*Codec, sourceGeometry) error
	// toRGB reports whether decoding should ask the engine for RGB output
	toRGB func(pi string) bool
}

// Syntax returns the transfer syntax handled by c
func (c *Codec) Syntax() transfer.Syntax { return c.syntax }

// Name returns a short identifier such as "jpeg-ls"
func (c *Codec) Name() string { return c.name }

// Lossy reports whether encoding to this syntax may discard information
func (c *Codec) Lossy() bool { return c.syntax.Profile().Lossy }

func (c *Codec) String() string {
	return fmt.Sprintf("%s (%s)", c.name, c.syntax.Name())
}

var codecsBySyntax = map[transfer.Syntax]*Codec{}

// codecsByName holds names and aliases for command line lookups
var codecsByName = map[string]*Codec{}

func register(c *Codec, aliases ...string) {
	codecsBySyntax[c.syntax] = c
	codecsByName[c.name] = c
	for _, a := range aliases {
		codecsByName[a] = c
	}
}

func init() {
	register(&Codec{syntax: transfer.ImplicitVRLittleEndian, name: "implicit-le", kind: native}, "implicit")
	register(&Codec{syntax: transfer.ExplicitVRLittleEndian, name: "explicit-le", kind: native}, "explicit", "native")
	register(&Codec{syntax: transfer.DeflatedExplicitVRLittleEndian, name: "deflated-le", kind: native}, "deflated")
	register(&Codec{syntax: transfer.ExplicitVRBigEndian, name: "explicit-be", kind: bigEndian}, "big-endian")

	register(&Codec{
		syntax: transfer.RLELossless, name: "rle", kind: encapsulated, family: rleFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = false },
	})
	register(&Codec{
		syntax: transfer.JPEGBaseline, name: "jpeg-baseline", kind: encapsulated, family: jpegFamily,
		force: func(p *engine.EncodeParams) {
			p.Lossy = true
			p.Predictor = 0
			p.PointTransform = 0
		},
		check: func(c *Codec, g sourceGeometry) error {
			if g.BitsStored != 8 {
				return dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth, "%s needs 8 bits stored, have %d", c.name, g.BitsStored)
			}
			return nil
		},
		toRGB: func(string) bool { return true },
	}, "jpeg")
	register(&Codec{
		syntax: transfer.JPEGLosslessSV1, name: "jpeg-lossless", kind: encapsulated, family: jpegFamily,
		force: func(p *engine.EncodeParams) {
			p.Lossy = false
			p.Predictor = 1
			p.PointTransform = 0
		},
		toRGB: func(pi string) bool { return pi != "RGB" },
	}, "jpeg-li", "jpeg-sv1")
	register(&Codec{
		syntax: transfer.JPEGLSLossless, name: "jpeg-ls", kind: encapsulated, family: jpeglsFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = false },
	})
	register(&Codec{
		syntax: transfer.JPEGLSNearLossless, name: "jpeg-ls-near", kind: encapsulated, family: jpeglsFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = true },
	}, "jpeg-ls-lossy")
	register(&Codec{
		syntax: transfer.JPEG2000Lossless, name: "jpeg-2000-lossless", kind: encapsulated, family: j2kFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = false },
	}, "jpeg-2000", "jpeg2000", "j2k")
	register(&Codec{
		syntax: transfer.JPEG2000, name: "jpeg-2000-lossy", kind: encapsulated, family: j2kFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = true },
	}, "j2k-lossy")
	register(&Codec{
		syntax: transfer.HTJ2KLossless, name: "htj2k-lossless", kind: encapsulated, family: htj2kFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = false },
	}, "htj2k")
	register(&Codec{
		syntax: transfer.HTJ2KLosslessRPCL, name: "htj2k-lossless-rpcl", kind: encapsulated, family: htj2kFamily,
		force: func(p *engine.EncodeParams) {
			p.Lossy = false
			p.ProgressionOrder = engine.RPCL
		},
	}, "htj2k-rpcl")
	register(&Codec{
		syntax: transfer.HTJ2K, name: "htj2k-lossy", kind: encapsulated, family: htj2kFamily,
		force: func(p *engine.EncodeParams) { p.Lossy = true },
	})
}

// For returns the codec registered for syntax
func For(syntax transfer.Syntax) (*Codec, error) {
	if c, ok := codecsBySyntax[syntax]; ok {
		return c, nil
	}
	return nil, dcmerr.NewSyntaxError(string(syntax), dcmerr.ErrUnsupportedSyntax)
}

// ByName resolves a codec name, alias or transfer syntax UID
func ByName(name string) (*Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := codecsByName[key]; ok {
		return c, nil
	}
	return For(transfer.FromUID(name))
}

// Names lists every registered codec name and alias
func Names() []string {
	names := make([]string, 0, len(codecsByName))
	for n := range codecsByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Encode converts the native pixel data of ds, currently in source, to c's
// syntax. ds is only modified once every frame has been encoded.
func (c *Codec) Encode(ctx context.Context, eng Engine, ds *dicom.Dataset, source transfer.Syntax, params Params) error {
	switch c.kind {
	case native:
		return nil
	case bigEndian:
		return swapPixelData(ds, source)
	}
	return c.encode(ctx, eng, ds, source, params.EncodeParams)
}

// Decode converts the pixel data of ds from c's syntax to native little
// endian. ds is only modified once every frame has been decoded.
func (c *Codec) Decode(ctx context.Context, eng Engine, ds *dicom.Dataset, params Params) error {
	switch c.kind {
	case native:
		return nil
	case bigEndian:
		return swapPixelData(ds, c.syntax)
	}
	return c.decode(ctx, eng, ds, params.DecodeParams)
}

// setLossy records lossy provenance and derives a new instance identity
func setLossy(ds *dicom.Dataset, method string, before, after int) {
	ratio := 0.0
	if after > 0 {
		ratio = float64(before) / float64(after)
	}
	ds.SetString(tag.LossyImageCompression, "01")
	ds.SetString(tag.LossyImageCompressionMethod, method)
	ds.SetString(tag.LossyImageCompressionRatio, fmt.Sprintf("%.3f", ratio))
	ds.SetString(tag.SOPInstanceUID, dicom.NewUID())
}
