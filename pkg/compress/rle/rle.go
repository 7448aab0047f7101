// Package rle implements the DICOM RLE Lossless codec (PS3.5 Annex G).
//
// A frame is split into byte planes, one per sample and byte of the sample,
// most significant byte first. Each plane is PackBits compressed into a
// segment behind a 64 byte header holding the segment count and 15 offsets.
package rle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	headerSize  = 64
	maxSegments = 15
)

// Encode compresses an interleaved little endian frame
func Encode(w io.Writer, frame []byte, width, height, samples, bytesPerSample int) error {
	numPixels := width * height
	numSegments := samples * bytesPerSample
	if numSegments == 0 || numSegments > maxSegments {
		return fmt.Errorf("rle: unsupported segment count %d", numSegments)
	}
	if len(frame) < numPixels*numSegments {
		return fmt.Errorf("rle: frame holds %d bytes, need %d", len(frame), numPixels*numSegments)
	}

	segments := make([][]byte, 0, numSegments)
	plane := make([]byte, numPixels)
	for s := 0; s < samples; s++ {
		for b := bytesPerSample - 1; b >= 0; b-- {
			for p := 0; p < numPixels; p++ {
				plane[p] = frame[(p*samples+s)*bytesPerSample+b]
			}
			seg := encodePackBits(plane)
			// Pad segments to even length
			if len(seg)%2 != 0 {
				seg = append(seg, 0x00)
			}
			segments = append(segments, seg)
		}
	}

	header := make([]uint32, 1+maxSegments)
	header[0] = uint32(numSegments)
	offset := uint32(headerSize)
	for i, seg := range segments {
		header[i+1] = offset
		offset += uint32(len(seg))
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	for _, seg := range segments {
		if _, err := w.Write(seg); err != nil {
			return err
		}
	}
	return nil
}

// Decode expands an RLE frame into interleaved little endian samples.
// The geometry must be supplied since the stream does not carry it.
func Decode(data []byte, width, height, samples, bytesPerSample int) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errors.New("rle: data too short for header")
	}

	numSegments := int(binary.LittleEndian.Uint32(data[0:4]))
	if numSegments == 0 {
		return nil, errors.New("rle: zero segments")
	}
	if numSegments > maxSegments {
		return nil, fmt.Errorf("rle: invalid segment count %d", numSegments)
	}
	if numSegments != samples*bytesPerSample {
		return nil, fmt.Errorf("rle: %d segments for %d samples of %d bytes", numSegments, samples, bytesPerSample)
	}
	offsets := make([]int, numSegments+1)
	for i := 0; i < numSegments; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(data[4+i*4:]))
	}
	offsets[numSegments] = len(data)

	numPixels := width * height
	out := make([]byte, numPixels*numSegments)
	for i := 0; i < numSegments; i++ {
		start, end := offsets[i], offsets[i+1]
		if start < headerSize || start > end || end > len(data) {
			return nil, fmt.Errorf("rle: invalid segment offset/length for segment %d", i)
		}
		plane, err := decodePackBits(data[start:end], numPixels)
		if err != nil {
			return nil, fmt.Errorf("rle: failed to decode segment %d (start=%d, end=%d, len=%d): %w", i, start, end, len(data), err)
		}
		if len(plane) < numPixels {
			return nil, fmt.Errorf("rle: decoded segment %d size %d does not match expected pixels %d", i, len(plane), numPixels)
		}
		s, b := i/bytesPerSample, bytesPerSample-1-i%bytesPerSample
		for p := 0; p < numPixels; p++ {
			out[(p*samples+s)*bytesPerSample+b] = plane[p]
		}
	}
	return out, nil
}
