package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcmerr "github.com/jpfielding/dcmtx.go/pkg/errors"
)

func TestChangePlanarConfiguration(t *testing.T) {
	interleaved := []byte{1, 2, 3, 4, 5, 6}
	planar, err := ChangePlanarConfiguration(interleaved, 8, 3, Interleaved)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 4, 2, 5, 3, 6}, planar)

	back, err := ChangePlanarConfiguration(planar, 8, 3, Planar)
	require.NoError(t, err)
	assert.Equal(t, interleaved, back)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, interleaved, "input untouched")
}

func TestChangePlanarConfigurationRejects(t *testing.T) {
	_, err := ChangePlanarConfiguration(make([]byte, 12), 16, 3, Planar)
	assert.ErrorIs(t, err, dcmerr.ErrUnsupportedBitDepth)
	_, err = ChangePlanarConfiguration(make([]byte, 12), 8, 0, Planar)
	assert.ErrorIs(t, err, dcmerr.ErrInvalidGeometry)
}

func TestYBRFullToRGB(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"neutral", []byte{128, 128, 128}, []byte{128, 128, 128}},
		{"white", []byte{255, 128, 128}, []byte{255, 255, 255}},
		{"clamped", []byte{0, 0, 255}, []byte{178, 0, 0}},
		// G = 63.5 truncates to 63, B is negative and clamps to 0
		{"truncation", []byte{100, 28, 228}, []byte{240, 63, 0}},
		{"small", []byte{10, 128, 129}, []byte{11, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YBRFullToRGB(tt.in))
		})
	}
}

func TestYBRFull422ToRGB(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		width int
		want  []byte
	}{
		{"even", []byte{128, 255, 128, 128}, 2,
			[]byte{128, 128, 128, 255, 255, 255}},
		{"odd width drops padding luma", []byte{128, 128, 128, 128, 255, 0, 128, 128}, 3,
			[]byte{128, 128, 128, 128, 128, 128, 255, 255, 255}},
		{"odd width two rows", []byte{
			128, 128, 128, 128, 255, 0, 128, 128,
			0, 0, 128, 128, 255, 7, 128, 128,
		}, 3, []byte{
			128, 128, 128, 128, 128, 128, 255, 255, 255,
			0, 0, 0, 0, 0, 0, 255, 255, 255,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YBRFull422ToRGB(tt.in, tt.width))
		})
	}
}

func TestYBRPartial422ToRGB(t *testing.T) {
	got := YBRPartial422ToRGB([]byte{16, 235, 128, 128, 126, 126, 128, 128}, 4)
	assert.Equal(t, []byte{0, 0, 0, 255, 255, 255, 128, 128, 128, 128, 128, 128}, got)
}

func TestUnpack16(t *testing.T) {
	data := []byte{0x01, 0xA1, 0x02, 0xA2, 0x03, 0xA3}
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, UnpackLow16(data))
	assert.Equal(t, []byte{0xA1, 0xA2, 0xA3}, UnpackHigh16(data))
	assert.Empty(t, UnpackLow16(nil))
}

func TestSwapBytes16(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	SwapBytes16(data)
	assert.Equal(t, []byte{2, 1, 4, 3, 5}, data)
	SwapBytes16(data)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, data)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, byte(0), clamp(-0.7))
	assert.Equal(t, byte(0), clamp(0.99))
	assert.Equal(t, byte(1), clamp(1.5))
	assert.Equal(t, byte(255), clamp(300))
}
