package pixel

// clamp truncates v toward zero and bounds it to a byte. Callers add 0.5
// first so positive values round half up.
func clamp(v float64) byte {
	t := int(v)
	if t < 0 {
		return 0
	}
	if t > 0xFF {
		return 0xFF
	}
	return byte(t)
}

type ybrToRGB func(y, cb, cr float64) (r, g, b byte)

// BT.601 full range
func fullRange(y, cb, cr float64) (byte, byte, byte) {
	return clamp(y + 1.402*(cr-128) + 0.5),
		clamp(y - 0.3441*(cb-128) - 0.7141*(cr-128) + 0.5),
		clamp(y + 1.772*(cb-128) + 0.5)
}

// BT.601 studio range
func partialRange(y, cb, cr float64) (byte, byte, byte) {
	l := 1.1644 * (y - 16)
	return clamp(l + 1.596*(cr-128) + 0.5),
		clamp(l - 0.3917*(cb-128) - 0.813*(cr-128) + 0.5),
		clamp(l + 2.0173*(cb-128) + 0.5)
}

// YBRFullToRGB converts interleaved YBR_FULL pixels to RGB
func YBRFullToRGB(data []byte) []byte {
	out := make([]byte, len(data))
	for n := 0; n+2 < len(data); n += 3 {
		out[n], out[n+1], out[n+2] = fullRange(float64(data[n]), float64(data[n+1]), float64(data[n+2]))
	}
	return out
}

// YBRFull422ToRGB converts YBR_FULL_422 macropixels (Y1 Y2 Cb Cr) to RGB.
// When width is odd the second luma sample of the last macropixel of each row
// is padding and produces no output pixel.
func YBRFull422ToRGB(data []byte, width int) []byte {
	return convert422(data, width, fullRange)
}

// YBRPartial422ToRGB is YBRFull422ToRGB with studio range coefficients
func YBRPartial422ToRGB(data []byte, width int) []byte {
	return convert422(data, width, partialRange)
}

func convert422(data []byte, width int, conv ybrToRGB) []byte {
	out := make([]byte, len(data)/4*2*3)
	p, col := 0, 0
	for n := 0; n+3 < len(data); n += 4 {
		y1, y2 := float64(data[n]), float64(data[n+1])
		cb, cr := float64(data[n+2]), float64(data[n+3])

		out[p], out[p+1], out[p+2] = conv(y1, cb, cr)
		p += 3
		if col++; col == width {
			col = 0
			continue
		}

		out[p], out[p+1], out[p+2] = conv(y2, cb, cr)
		p += 3
		if col++; col == width {
			col = 0
		}
	}
	return out[:p]
}
