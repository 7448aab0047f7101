package transcode

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
)

// Comparison holds the cost and fidelity of encoding one dataset in a syntax
type Comparison struct {
	Syntax           transfer.Syntax
	UncompressedSize int
	CompressedSize   int
	Ratio            float64 // uncompressed/compressed
	SpaceSaved       float64 // percent
	MaxError         int     // largest absolute sample difference after a round trip
	MeanError        float64 // average absolute sample difference
	Err              error
}

func (c Comparison) String() string {
	if c.Err != nil {
		return fmt.Sprintf("%s: %v", c.Syntax.Name(), c.Err)
	}
	return fmt.Sprintf("%s: %.2fx ratio, %d -> %d bytes, %.1f%% saved, max error %d, mean error %.3f",
		c.Syntax.Name(), c.Ratio, c.UncompressedSize, c.CompressedSize, c.SpaceSaved, c.MaxError, c.MeanError)
}

// Compare encodes a copy of ds in every target syntax, decodes it again and
// measures the result against the native source. Targets are compared
// concurrently; a failing target reports through its Comparison.
func (t *Transcoder) Compare(ctx context.Context, ds *dicom.Dataset, from transfer.Syntax, targets []transfer.Syntax, params codec.Params) ([]Comparison, error) {
	native, _, err := t.TranscodeCopy(ctx, ds, from, Intermediate, params)
	if err != nil {
		return nil, err
	}
	pd, ok := native.PixelData()
	if !ok {
		return nil, fmt.Errorf("dataset has no pixel data")
	}
	reference := pd.Bytes()
	ba, _ := native.Int(tag.BitsAllocated)
	signed, _ := native.Int(tag.PixelRepresentation)

	res := make([]Comparison, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, to := range targets {
		g.Go(func() error {
			c := Comparison{Syntax: to, UncompressedSize: len(reference)}
			c.Err = t.compareOne(gctx, native, to, params, reference, ba, signed != 0, &c)
			if c.Err != nil {
				t.logger.DebugContext(gctx, "compare failed", slog.String("to", to.Name()), slog.Any("error", c.Err))
			}
			res[i] = c
			return gctx.Err()
		})
	}
	return res, g.Wait()
}

func (t *Transcoder) compareOne(ctx context.Context, native *dicom.Dataset, to transfer.Syntax, params codec.Params, reference []byte, ba int, signed bool, c *Comparison) error {
	encoded, _, err := t.TranscodeCopy(ctx, native, Intermediate, to, params)
	if err != nil {
		return err
	}
	pd, ok := encoded.PixelData()
	if !ok || pd.Len() == 0 {
		return fmt.Errorf("encoding produced no pixel data")
	}
	c.CompressedSize = pd.Len()
	c.Ratio = float64(c.UncompressedSize) / float64(c.CompressedSize)
	c.SpaceSaved = float64(c.UncompressedSize-c.CompressedSize) / float64(c.UncompressedSize) * 100

	decoded := encoded
	if to != Intermediate {
		if _, err := t.Transcode(ctx, decoded, to, Intermediate, params); err != nil {
			return err
		}
	}
	dpd, _ := decoded.PixelData()
	c.MaxError, c.MeanError = sampleError(reference, dpd.Bytes(), ba, signed)
	return nil
}

// sampleError compares the overlapping samples of two native little endian buffers
func sampleError(a, b []byte, bitsAllocated int, signed bool) (int, float64) {
	width := 1
	if bitsAllocated == 16 {
		width = 2
	}
	n := min(len(a), len(b)) / width
	if n == 0 {
		return 0, 0
	}
	sample := func(buf []byte, i int) int {
		if width == 2 {
			v := binary.LittleEndian.Uint16(buf[2*i:])
			if signed {
				return int(int16(v))
			}
			return int(v)
		}
		if signed {
			return int(int8(buf[i]))
		}
		return int(buf[i])
	}
	maxErr, sum := 0, 0
	for i := 0; i < n; i++ {
		d := sample(a, i) - sample(b, i)
		if d < 0 {
			d = -d
		}
		maxErr = max(maxErr, d)
		sum += d
	}
	return maxErr, float64(sum) / float64(n)
}
