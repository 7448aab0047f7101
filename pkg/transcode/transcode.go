// Package transcode moves a dataset's pixel data between transfer syntaxes,
// going through native little endian when both ends are compressed.
package transcode

import (
	"context"
	"log/slog"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
)

// Intermediate is the syntax every codec can decode to and encode from
const Intermediate = transfer.ExplicitVRLittleEndian

// Transcoder runs codecs against one engine. It holds no per-dataset state,
// so one Transcoder may serve concurrent calls on distinct datasets.
type Transcoder struct {
	eng    codec.Engine
	logger *slog.Logger
}

// Option configures a Transcoder
type Option func(*Transcoder)

// WithLogger sets the logger used for per-hop debug messages
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcoder) {
		t.logger = l
	}
}

// New returns a Transcoder using eng for entropy coding
func New(eng codec.Engine, opts ...Option) *Transcoder {
	t := &Transcoder{eng: eng, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode converts ds in place from one syntax to another and returns the
// syntax ds is now in. A failure in the second hop of a compressed to
// compressed transcoding leaves ds in Intermediate; use TranscodeCopy when
// that matters.
func (t *Transcoder) Transcode(ctx context.Context, ds *dicom.Dataset, from, to transfer.Syntax, params codec.Params) (transfer.Syntax, error) {
	if from == to {
		return from, nil
	}
	src, okFrom := transfer.Lookup(from)
	dst, okTo := transfer.Lookup(to)
	if !okFrom || !okTo {
		return from, dcmerr.NewTranscodeError(string(from), string(to), dcmerr.ErrUnsupportedTranscoding)
	}
	if err := ctx.Err(); err != nil {
		return from, err
	}

	if src.Encapsulated && dst.Encapsulated {
		cur, err := t.Transcode(ctx, ds, from, Intermediate, params)
		if err != nil {
			return cur, err
		}
		if err := ctx.Err(); err != nil {
			return cur, err
		}
		from, src = cur, transfer.Profile{}
	}

	if ds.Has(tag.PixelData) {
		if err := t.hop(ctx, ds, from, to, src, dst, params); err != nil {
			return from, dcmerr.NewTranscodeError(string(from), string(to), err)
		}
	}
	t.logger.DebugContext(ctx, "transcoded",
		slog.String("from", from.Name()),
		slog.String("to", to.Name()))
	return to, nil
}

func (t *Transcoder) hop(ctx context.Context, ds *dicom.Dataset, from, to transfer.Syntax, src, dst transfer.Profile, params codec.Params) error {
	ba, _ := ds.Int(tag.BitsAllocated)
	if ba != 8 && ba != 16 {
		return dcmerr.Detail(dcmerr.ErrUnsupportedBitDepth, "transcoding needs 8 or 16 bits allocated, have %d", ba)
	}

	native := from
	if src.Encapsulated || src.BigEndian {
		c, err := codec.For(from)
		if err != nil {
			return err
		}
		t.logger.DebugContext(ctx, "decoding", slog.String("codec", c.Name()))
		if err := c.Decode(ctx, t.eng, ds, params); err != nil {
			return err
		}
		native = Intermediate
	}
	if dst.Encapsulated || dst.BigEndian {
		c, err := codec.For(to)
		if err != nil {
			return err
		}
		t.logger.DebugContext(ctx, "encoding", slog.String("codec", c.Name()))
		if err := c.Encode(ctx, t.eng, ds, native, params); err != nil {
			return err
		}
	}
	return nil
}

// TranscodeCopy transcodes a deep copy of ds, leaving ds untouched
func (t *Transcoder) TranscodeCopy(ctx context.Context, ds *dicom.Dataset, from, to transfer.Syntax, params codec.Params) (*dicom.Dataset, transfer.Syntax, error) {
	cp := ds.Clone()
	cur, err := t.Transcode(ctx, cp, from, to, params)
	if err != nil {
		return nil, from, err
	}
	return cp, cur, nil
}
