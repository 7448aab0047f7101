// Package enginetest provides deterministic backends for pipeline tests.
package enginetest

import (
	"errors"
	"sync"

	"github.com/jpfielding/dcmtx.go/pkg/engine"
	"github.com/jpfielding/dcmtx.go/pkg/exchange"
)

// ErrInjected is returned by a Loopback once FailAfter calls have succeeded
var ErrInjected = errors.New("enginetest: injected failure")

// Loopback "compresses" by copying the frame, so every transcoding through
// it is exactly reversible. It records each call.
type Loopback struct {
	mu        sync.Mutex
	Encodes   []exchange.Context
	Decodes   []exchange.Context
	FailAfter int // fail once this many calls succeeded, 0 disables
	calls     int

	// EncodedPI, when set, replaces the photometric interpretation on encode
	EncodedPI string
}

func (l *Loopback) fail() bool {
	l.calls++
	return l.FailAfter > 0 && l.calls > l.FailAfter
}

func (l *Loopback) Encode(c exchange.Context, _ engine.EncodeParams) (exchange.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail() {
		return c, ErrInjected
	}
	c.EncodedBuffer = append([]byte(nil), c.DecodedBuffer...)
	if l.EncodedPI != "" {
		c.PhotometricInterpretation = l.EncodedPI
	}
	l.Encodes = append(l.Encodes, c)
	return c, nil
}

func (l *Loopback) Decode(c exchange.Context, _ engine.DecodeParams) (exchange.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail() {
		return c, ErrInjected
	}
	c.DecodedBuffer = append([]byte(nil), c.EncodedBuffer...)
	l.Decodes = append(l.Decodes, c)
	return c, nil
}

// Options routes every family to l
func (l *Loopback) Options() []engine.Option {
	var opts []engine.Option
	for _, f := range []engine.Family{engine.RLE, engine.JPEG, engine.JPEGLS, engine.JPEG2000, engine.HTJ2K} {
		opts = append(opts, engine.WithBackend(f, l))
	}
	return opts
}
