package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/flate"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/vr"
)

// File meta identification written into every Part 10 stream
const (
	ImplementationClassUID    = "1.2.826.0.1.3680043.10.854"
	ImplementationVersionName = "DCMTX-GO-V1"
	SecondaryCaptureUID       = "1.2.840.10008.5.1.4.1.1.7"
)

// fragmentSize bounds fragments when multi-frame data is split
const fragmentSize = 20 * 1024

// WriteOptions controls Part 10 output
type WriteOptions struct {
	// FragmentMultiframe splits each encapsulated frame into fragments of at most 20KiB
	FragmentMultiframe bool
}

// WriteFile writes a dataset to a Part 10 file
func WriteFile(path string, ds *Dataset, syntax transfer.Syntax, opts WriteOptions) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(f, ds, syntax, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Write writes ds as a Part 10 stream in syntax. The file meta group is
// regenerated from the dataset, any group 0002 elements in ds are ignored.
func Write(w io.Writer, ds *Dataset, syntax transfer.Syntax, opts WriteOptions) (int64, error) {
	cw := &CountingWriter{Writer: w}

	// Preamble (128 bytes 0x00) and DICM Magic
	if _, err := cw.Write(append(make([]byte, 128), "DICM"...)); err != nil {
		return cw.Count.Load(), err
	}

	le := &writer{order: binary.LittleEndian, explicitVR: true}
	var meta bytes.Buffer
	for _, elem := range fileMeta(ds, syntax) {
		if err := le.writeElement(&meta, elem); err != nil {
			return cw.Count.Load(), err
		}
	}
	groupLength := &Element{Tag: tag.FileMetaInformationGroupLength, VR: "UL", Value: uint32(meta.Len())}
	if err := le.writeElement(cw, groupLength); err != nil {
		return cw.Count.Load(), err
	}
	if _, err := cw.Write(meta.Bytes()); err != nil {
		return cw.Count.Load(), err
	}

	if err := writeBody(cw, ds, syntax, opts); err != nil {
		return cw.Count.Load(), err
	}
	return cw.Count.Load(), nil
}

// WriteRaw writes the dataset body in syntax without preamble or file meta
func WriteRaw(w io.Writer, ds *Dataset, syntax transfer.Syntax) (int64, error) {
	cw := &CountingWriter{Writer: w}
	err := writeBody(cw, ds, syntax, WriteOptions{})
	return cw.Count.Load(), err
}

func fileMeta(ds *Dataset, syntax transfer.Syntax) []*Element {
	sopClass, ok := ds.String(tag.SOPClassUID)
	if !ok || sopClass == "" {
		sopClass = SecondaryCaptureUID
	}
	sopInstance, ok := ds.String(tag.SOPInstanceUID)
	if !ok || sopInstance == "" {
		sopInstance = NewUID()
	}
	return []*Element{
		{Tag: tag.FileMetaInformationVersion, VR: "OB", Value: []byte{0x00, 0x01}},
		{Tag: tag.MediaStorageSOPClassUID, VR: "UI", Value: sopClass},
		{Tag: tag.MediaStorageSOPInstanceUID, VR: "UI", Value: sopInstance},
		{Tag: tag.TransferSyntaxUID, VR: "UI", Value: string(syntax)},
		{Tag: tag.ImplementationClassUID, VR: "UI", Value: ImplementationClassUID},
		{Tag: tag.ImplementationVersionName, VR: "SH", Value: ImplementationVersionName},
	}
}

func writeBody(w io.Writer, ds *Dataset, syntax transfer.Syntax, opts WriteOptions) error {
	wr := &writer{
		order:      binary.LittleEndian,
		explicitVR: syntax.IsExplicitVR(),
		fragment:   opts.FragmentMultiframe,
	}
	if !syntax.IsLittleEndian() {
		wr.order = binary.BigEndian
	}
	if !syntax.IsDeflated() {
		return wr.writeDataset(w, ds)
	}
	fw, err := flate.NewWriter(w, flate.DefaultCompression)
	if err != nil {
		return err
	}
	if err := wr.writeDataset(fw, ds); err != nil {
		return err
	}
	return fw.Close()
}

// byteOrder is satisfied by binary.LittleEndian and binary.BigEndian
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type writer struct {
	order      byteOrder
	explicitVR bool
	fragment   bool
}

func (wr *writer) writeDataset(w io.Writer, ds *Dataset) error {
	for _, t := range ds.Tags() {
		if t.IsGroup0002() {
			continue
		}
		if err := wr.writeElement(w, ds.Elements[t]); err != nil {
			return fmt.Errorf("failed to write element %v: %w", t, err)
		}
	}
	return nil
}

func (wr *writer) writeElement(w io.Writer, elem *Element) error {
	var hdr [12]byte
	wr.order.PutUint16(hdr[0:], elem.Tag.Group)
	wr.order.PutUint16(hdr[2:], elem.Tag.Element)

	name := vr.VR(elem.VR)
	if len(name) != 2 {
		slog.Warn("Invalid VR length, defaulting to UN", "vr", name, "tag", elem.Tag)
		name = "UN"
	}

	valBytes, isUndefinedLength, err := wr.encodeValue(elem.Value, name)
	if err != nil {
		return err
	}
	length := uint32(len(valBytes))
	if isUndefinedLength {
		length = undefinedLength
	}

	n := 8
	switch {
	case !wr.explicitVR:
		wr.order.PutUint32(hdr[4:], length)
	case name.HasLongLength():
		copy(hdr[4:], string(name))
		wr.order.PutUint32(hdr[8:], length)
		n = 12
	default:
		if isUndefinedLength || len(valBytes) > math.MaxUint16 {
			return fmt.Errorf("length %d not supported for short VR %s", len(valBytes), name)
		}
		copy(hdr[4:], string(name))
		wr.order.PutUint16(hdr[6:], uint16(length))
	}
	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err = w.Write(valBytes)
	return err
}

// encodeValue returns encoded bytes and a bool indicating if undefined length used (e.g. encapsulated pixels)
func (wr *writer) encodeValue(v interface{}, name vr.VR) ([]byte, bool, error) {
	if v == nil {
		return []byte{}, false, nil
	}

	if pd, ok := v.(*PixelData); ok {
		if pd.Encapsulated {
			return wr.encodeEncapsulatedPixelData(pd), true, nil
		}
		return padEven(pd.Bytes(), 0), false, nil
	}

	switch val := v.(type) {
	case []*Dataset:
		b, err := wr.encodeSequence(val)
		return b, true, err
	case string:
		return padEven([]byte(val), name.Padding()), false, nil
	case []string:
		return padEven([]byte(strings.Join(val, `\`)), ' '), false, nil
	case uint16:
		return wr.order.AppendUint16(nil, val), false, nil
	case []uint16:
		var b []byte
		for _, u := range val {
			b = wr.order.AppendUint16(b, u)
		}
		return b, false, nil
	case uint32:
		return wr.order.AppendUint32(nil, val), false, nil
	case []uint32:
		var b []byte
		for _, u := range val {
			b = wr.order.AppendUint32(b, u)
		}
		return b, false, nil
	case int16:
		return wr.order.AppendUint16(nil, uint16(val)), false, nil
	case []int16:
		var b []byte
		for _, u := range val {
			b = wr.order.AppendUint16(b, uint16(u))
		}
		return b, false, nil
	case int32:
		return wr.order.AppendUint32(nil, uint32(val)), false, nil
	case []int32:
		var b []byte
		for _, u := range val {
			b = wr.order.AppendUint32(b, uint32(u))
		}
		return b, false, nil
	case int:
		switch name {
		case "US", "SS":
			return wr.order.AppendUint16(nil, uint16(val)), false, nil
		case "UL", "SL":
			return wr.order.AppendUint32(nil, uint32(val)), false, nil
		}
		return padEven([]byte(strconv.Itoa(val)), ' '), false, nil
	case float32:
		return wr.order.AppendUint32(nil, math.Float32bits(val)), false, nil
	case []float32:
		var b []byte
		for _, f := range val {
			b = wr.order.AppendUint32(b, math.Float32bits(f))
		}
		return b, false, nil
	case float64:
		// If DS, encode as string. If FL/FD, binary.
		switch name {
		case "DS":
			return padEven([]byte(strconv.FormatFloat(val, 'g', -1, 64)), ' '), false, nil
		case "FL":
			return wr.order.AppendUint32(nil, math.Float32bits(float32(val))), false, nil
		}
		return wr.order.AppendUint64(nil, math.Float64bits(val)), false, nil
	case []float64:
		var b []byte
		for _, f := range val {
			b = wr.order.AppendUint64(b, math.Float64bits(f))
		}
		return b, false, nil
	case []byte:
		return padEven(val, 0), false, nil
	}

	return nil, false, fmt.Errorf("unsupported value type %T for VR %s", v, name)
}

func (wr *writer) encodeSequence(datasets []*Dataset) ([]byte, error) {
	var buf bytes.Buffer
	for _, ds := range datasets {
		var item bytes.Buffer
		if err := wr.writeDataset(&item, ds); err != nil {
			return nil, fmt.Errorf("failed to encode sequence item: %w", err)
		}
		buf.Write(wr.order.AppendUint16(nil, tag.Item.Group))
		buf.Write(wr.order.AppendUint16(nil, tag.Item.Element))
		buf.Write(wr.order.AppendUint32(nil, uint32(item.Len())))
		buf.Write(item.Bytes())
	}
	buf.Write(wr.order.AppendUint16(nil, tag.SequenceDelimitation.Group))
	buf.Write(wr.order.AppendUint16(nil, tag.SequenceDelimitation.Element))
	buf.Write([]byte{0, 0, 0, 0})
	return buf.Bytes(), nil
}

func (wr *writer) encodeEncapsulatedPixelData(pd *PixelData) []byte {
	le := binary.LittleEndian
	var buf bytes.Buffer

	fragments := pd.Buffers
	offsets := pd.Offsets
	if wr.fragment {
		fragments = nil
		offsets = nil
		var pos uint32
		for _, b := range pd.Buffers {
			offsets = append(offsets, pos)
			for len(b) > fragmentSize {
				fragments = append(fragments, b[:fragmentSize])
				pos += 8 + fragmentSize
				b = b[fragmentSize:]
			}
			fragments = append(fragments, b)
			pos += 8 + uint32(len(b)+len(b)%2)
		}
	}

	// Basic Offset Table item
	buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})
	buf.Write(le.AppendUint32(nil, uint32(len(offsets)*4)))
	for _, off := range offsets {
		buf.Write(le.AppendUint32(nil, off))
	}

	for _, f := range fragments {
		f = padEven(f, 0)
		buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})
		buf.Write(le.AppendUint32(nil, uint32(len(f))))
		buf.Write(f)
	}

	// Sequence Delimitation Item
	buf.Write([]byte{0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00})
	return buf.Bytes()
}

func padEven(b []byte, pad byte) []byte {
	if len(b)%2 == 0 {
		return b
	}
	return append(b[:len(b):len(b)], pad)
}

// CountingWriter counts bytes written through it
type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	c.Count.Add(int64(n))
	return n, err
}
