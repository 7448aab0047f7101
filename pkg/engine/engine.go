// Package engine routes per-frame entropy coding to a backend per codec family.
//
// An Engine must be initialized before use; calls made while it is not ready
// fail immediately with ErrEngineNotInitialized instead of waiting.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jpfielding/dcmtx.go/pkg/exchange"
	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
)

// Family identifies a group of transfer syntaxes sharing an entropy coder
type Family int

const (
	RLE Family = iota
	JPEG
	JPEGLS
	JPEG2000
	HTJ2K
)

func (f Family) String() string {
	switch f {
	case RLE:
		return "rle"
	case JPEG:
		return "jpeg"
	case JPEGLS:
		return "jpeg-ls"
	case JPEG2000:
		return "jpeg2000"
	case HTJ2K:
		return "htj2k"
	}
	return "unknown"
}

// Backend encodes and decodes single frames for one family
type Backend interface {
	Encode(c exchange.Context, p EncodeParams) (exchange.Context, error)
	Decode(c exchange.Context, p DecodeParams) (exchange.Context, error)
}

// Engine is safe for concurrent use once initialized
type Engine struct {
	mu       sync.RWMutex
	ready    bool
	backends map[Family]Backend
	logger   *slog.Logger
	trace    bool
}

// Option configures an Engine
type Option func(*Engine)

// WithBackend replaces the backend used for family
func WithBackend(family Family, b Backend) Option {
	return func(e *Engine) {
		e.backends[family] = b
	}
}

// WithLogger sets the logger for lifecycle and per-frame messages
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTrace logs every encode and decode call at debug level
func WithTrace(trace bool) Option {
	return func(e *Engine) {
		e.trace = trace
	}
}

// New returns an uninitialized engine with the default backends
func New(opts ...Option) *Engine {
	e := &Engine{
		backends: map[Family]Backend{
			RLE:      rleBackend{},
			JPEG:     jpegBackend{},
			JPEGLS:   jpeglsBackend{},
			JPEG2000: j2kBackend{},
			HTJ2K:    htj2kBackend{},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize readies the engine. Repeated calls are no-ops.
func (e *Engine) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}
	e.ready = true
	e.logger.InfoContext(ctx, "codec engine initialized", slog.Int("backends", len(e.backends)))
	return nil
}

// IsInitialized reports whether the engine accepts calls
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Release returns the engine to the uninitialized state
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		e.ready = false
		e.logger.Info("codec engine released")
	}
}

func (e *Engine) backend(family Family) (Backend, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.ready {
		return nil, dcmerr.ErrEngineNotInitialized
	}
	b, ok := e.backends[family]
	if !ok {
		return nil, dcmerr.NewEngineError(family.String(), "lookup", dcmerr.ErrUnsupportedSyntax)
	}
	return b, nil
}

// Encode compresses c.DecodedBuffer with the family backend
func (e *Engine) Encode(ctx context.Context, family Family, c exchange.Context, p EncodeParams) (exchange.Context, error) {
	if err := ctx.Err(); err != nil {
		return c, err
	}
	b, err := e.backend(family)
	if err != nil {
		return c, err
	}
	if err := validate(c, c.DecodedBuffer); err != nil {
		return c, err
	}
	if e.trace {
		e.logger.DebugContext(ctx, "encode frame",
			slog.String("family", family.String()),
			slog.Int("width", c.Width), slog.Int("height", c.Height),
			slog.Int("bits_stored", c.BitsStored), slog.Int("samples", c.SamplesPerPixel),
			slog.Bool("lossy", p.Lossy), slog.Int("in", len(c.DecodedBuffer)))
	}
	out, err := b.Encode(c, p)
	if err != nil {
		return c, dcmerr.NewEngineError(family.String(), "encode", err)
	}
	if e.trace {
		e.logger.DebugContext(ctx, "encoded frame", slog.String("family", family.String()), slog.Int("out", len(out.EncodedBuffer)))
	}
	return out, nil
}

// Decode expands c.EncodedBuffer with the family backend
func (e *Engine) Decode(ctx context.Context, family Family, c exchange.Context, p DecodeParams) (exchange.Context, error) {
	if err := ctx.Err(); err != nil {
		return c, err
	}
	b, err := e.backend(family)
	if err != nil {
		return c, err
	}
	if err := validate(c, c.EncodedBuffer); err != nil {
		return c, err
	}
	if e.trace {
		e.logger.DebugContext(ctx, "decode frame",
			slog.String("family", family.String()),
			slog.Int("width", c.Width), slog.Int("height", c.Height),
			slog.Bool("to_rgb", p.ConvertColorspaceToRGB), slog.Int("in", len(c.EncodedBuffer)))
	}
	out, err := b.Decode(c, p)
	if err != nil {
		return c, dcmerr.NewEngineError(family.String(), "decode", err)
	}
	if e.trace {
		e.logger.DebugContext(ctx, "decoded frame", slog.String("family", family.String()), slog.Int("out", len(out.DecodedBuffer)))
	}
	return out, nil
}

func validate(c exchange.Context, buf []byte) error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return dcmerr.Detail(dcmerr.ErrInvalidGeometry, "width %d, height %d", c.Width, c.Height)
	case c.BitsAllocated <= 0 || c.BitsStored <= 0 || c.BitsStored > c.BitsAllocated:
		return dcmerr.Detail(dcmerr.ErrInvalidGeometry, "bits allocated %d, bits stored %d", c.BitsAllocated, c.BitsStored)
	case c.SamplesPerPixel <= 0:
		return dcmerr.Detail(dcmerr.ErrInvalidGeometry, "samples per pixel %d", c.SamplesPerPixel)
	case len(buf) == 0:
		return dcmerr.ErrMissingData
	}
	return nil
}
