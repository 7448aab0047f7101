package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	jpeg2000 "github.com/mrjoshuak/go-jpeg2000"

	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// htj2kBackend writes Part 15 block coding through go-jpeg2000, which takes
// frames as image.Image values
type htj2kBackend struct{}

func (htj2kBackend) Encode(c exchange.Context, p EncodeParams) (exchange.Context, error) {
	buf, depth, err := prepare(c)
	if err != nil {
		return c, err
	}
	img, err := toImage(buf, c.Width, c.Height, c.SamplesPerPixel, depth > 8)
	if err != nil {
		return c, err
	}
	opts := &jpeg2000.Options{
		Format:         jpeg2000.FormatJ2K,
		Lossless:       !p.Lossy,
		NumResolutions: max(2, levels(c.Width, c.Height)+1),
		NumLayers:      1,
		// HT blocks are 32 or 128 wide; the tile coder and COD marker must agree
		CodeBlockSize:  image.Point{X: 3, Y: 3},
		HighThroughput: true,
		HTBlockWidth:   32,
		HTBlockHeight:  32,
	}
	if p.Lossy {
		opts.Quality = qualityFromRate(p.Rate)
	}
	switch p.ProgressionOrder {
	case RLCP:
		opts.ProgressionOrder = 1
	case RPCL:
		opts.ProgressionOrder = 2
	case PCRL:
		opts.ProgressionOrder = 3
	case CPRL:
		opts.ProgressionOrder = 4
	}
	var out bytes.Buffer
	if err := jpeg2000.Encode(&out, img, opts); err != nil {
		return c, err
	}
	c.EncodedBuffer = out.Bytes()
	return c, nil
}

func (htj2kBackend) Decode(c exchange.Context, _ DecodeParams) (exchange.Context, error) {
	img, err := jpeg2000.Decode(bytes.NewReader(c.EncodedBuffer))
	if err != nil {
		return c, err
	}
	wide := c.BitsAllocated == 16 && c.BitsStored > 8
	out, err := restore(c, fromImage(img, c.SamplesPerPixel, wide))
	if err != nil {
		return c, err
	}
	c.DecodedBuffer = out
	return c, nil
}

// toImage wraps an interleaved coder buffer; 16 bit samples are little endian
func toImage(buf []byte, width, height, samples int, wide bool) (image.Image, error) {
	rect := image.Rect(0, 0, width, height)
	n := width * height
	switch {
	case samples == 1 && !wide:
		img := image.NewGray(rect)
		copy(img.Pix, buf[:n])
		return img, nil
	case samples == 1:
		img := image.NewGray16(rect)
		for i := range n {
			binary.BigEndian.PutUint16(img.Pix[2*i:], binary.LittleEndian.Uint16(buf[2*i:]))
		}
		return img, nil
	case samples == 3 && !wide:
		img := image.NewRGBA(rect)
		for i := range n {
			copy(img.Pix[4*i:4*i+3], buf[3*i:3*i+3])
			img.Pix[4*i+3] = 0xFF
		}
		return img, nil
	case samples == 3:
		img := image.NewRGBA64(rect)
		for i := range n {
			for s := range 3 {
				binary.BigEndian.PutUint16(img.Pix[8*i+2*s:], binary.LittleEndian.Uint16(buf[6*i+2*s:]))
			}
			binary.BigEndian.PutUint16(img.Pix[8*i+6:], 0xFFFF)
		}
		return img, nil
	}
	return nil, fmt.Errorf("htj2k: %d samples per pixel not supported", samples)
}

// fromImage flattens a decoded image back into an interleaved coder buffer
func fromImage(img image.Image, samples int, wide bool) []byte {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	size := 1
	if wide {
		size = 2
	}
	out := make([]byte, 0, width*height*samples*size)
	put := func(v uint16) {
		if wide {
			out = binary.LittleEndian.AppendUint16(out, v)
			return
		}
		out = append(out, byte(v))
	}

	switch m := img.(type) {
	case *image.Gray:
		if !wide && samples == 1 {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				out = append(out, m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]...)
			}
			return out
		}
	case *image.Gray16:
		if samples == 1 {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					put(m.Gray16At(x, y).Y)
				}
			}
			return out
		}
	}

	// 8 bit sources widen to 16 bits in the color model, so shift them back
	shift := 8
	if wide {
		shift = 0
		switch img.(type) {
		case *image.Gray, *image.RGBA, *image.NRGBA:
			shift = 8
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.At(x, y)
			if samples == 1 {
				g := color.Gray16Model.Convert(px).(color.Gray16)
				put(g.Y >> shift)
				continue
			}
			r, g, bl, _ := px.RGBA()
			put(uint16(r) >> shift)
			put(uint16(g) >> shift)
			put(uint16(bl) >> shift)
		}
	}
	return out
}
