package rle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePackBitsExact(t *testing.T) {
	tests := []struct {
		name  string
		plane []byte
		want  []byte
	}{
		{"Empty", nil, nil},
		{"Single", []byte{7}, []byte{0x00, 7}},
		{"PairReplicates", []byte{9, 9}, []byte{0xFF, 9}},
		{"LiteralThenRun", []byte{1, 2, 5, 5, 5}, []byte{0x01, 1, 2, 0xFE, 5}},
		// a pair inside a literal stays literal, three in a row break it
		{"PairInLiteral", []byte{1, 4, 4, 2, 3, 3, 3}, []byte{0x03, 1, 4, 4, 2, 0xFE, 3}},
		{"FullRun", bytes.Repeat([]byte{0}, 128), []byte{0x81, 0}},
		{"RunSplit", bytes.Repeat([]byte{0}, 130), []byte{0x81, 0, 0xFF, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodePackBits(tt.plane))
		})
	}
}

func TestPackBitsPlanes(t *testing.T) {
	ramp := make([]byte, 300)
	for i := range ramp {
		ramp[i] = byte(i)
	}
	// high byte plane of 12 bit samples: long runs with occasional steps
	high := make([]byte, 512)
	for i := range high {
		high[i] = byte(i / 200)
	}
	tests := []struct {
		name  string
		plane []byte
	}{
		{"Constant", bytes.Repeat([]byte{0x80}, 1000)},
		{"Ramp", ramp},
		{"HighByte", high},
		{"Checker", bytes.Repeat([]byte{0, 255}, 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := encodePackBits(tt.plane)
			for i := 0; i < len(enc); {
				n := int8(enc[i])
				require.NotEqual(t, int8(-128), n, "encoder never emits the no-op header")
				if n >= 0 {
					i += int(n) + 2
				} else {
					i += 2
				}
			}
			dec, err := decodePackBits(enc, len(tt.plane))
			require.NoError(t, err)
			assert.Equal(t, tt.plane, dec)
		})
	}
}

func TestDecodePackBitsSegment(t *testing.T) {
	tests := []struct {
		name   string
		seg    []byte
		length int
		want   []byte
	}{
		{"NoOpSkipped", []byte{0x80, 0x01, 3, 4}, 2, []byte{3, 4}},
		{"PadAfterPlane", []byte{0xFD, 6, 0x00}, 4, []byte{6, 6, 6, 6}},
		{"OverrunTrimmed", []byte{0xF9, 1}, 3, []byte{1, 1, 1}},
		{"UnknownLength", []byte{0x00, 5, 0xFF, 6}, 0, []byte{5, 6, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePackBits(tt.seg, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePackBitsTruncated(t *testing.T) {
	tests := []struct {
		name string
		seg  []byte
		msg  string
	}{
		{"Literal", []byte{0x03, 1, 2}, "truncated in literal run"},
		{"EmptyLiteral", []byte{0x00}, "truncated in literal run"},
		{"Replicate", []byte{0x00, 1, 0xFC}, "truncated in replicate run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePackBits(tt.seg, 16)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}
