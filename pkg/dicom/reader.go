package dicom

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/flate"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/vr"
)

const undefinedLength = 0xFFFFFFFF

// Reader reads DICOM datasets
type Reader struct {
	r          io.Reader
	explicitVR bool
	order      binary.ByteOrder
}

// NewReader creates a reader decoding elements in the given transfer syntax
func NewReader(r io.Reader, syntax transfer.Syntax) *Reader {
	rd := &Reader{r: r}
	rd.setSyntax(syntax)
	return rd
}

func (r *Reader) setSyntax(syntax transfer.Syntax) {
	r.explicitVR = syntax.IsExplicitVR()
	r.order = binary.LittleEndian
	if !syntax.IsLittleEndian() {
		r.order = binary.BigEndian
	}
}

// Read reads a Part 10 stream: preamble, DICM magic, file meta information and
// the dataset encoded in the announced transfer syntax.
func Read(in io.Reader) (*Dataset, transfer.Syntax, error) {
	br := bufio.NewReader(in)

	preamble := make([]byte, 128+4)
	if _, err := io.ReadFull(br, preamble); err != nil {
		return nil, "", fmt.Errorf("failed to read preamble: %w", err)
	}
	if string(preamble[128:]) != "DICM" {
		return nil, "", errors.New("invalid DICOM file: missing DICM magic")
	}

	ds := NewDataset()

	// Group 0002 (File Meta Information) is ALWAYS Explicit VR Little Endian
	meta := NewReader(br, transfer.ExplicitVRLittleEndian)
	for {
		peek, err := br.Peek(2)
		if err != nil || binary.LittleEndian.Uint16(peek) != 0x0002 {
			break
		}
		elem, err := meta.ReadElement()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read file meta: %w", err)
		}
		ds.Put(elem)
	}

	syntax := transfer.ImplicitVRLittleEndian
	if s, ok := ds.String(tag.TransferSyntaxUID); ok {
		syntax = transfer.FromUID(s)
	}
	if err := readBody(br, syntax, ds); err != nil {
		return nil, syntax, err
	}
	return ds, syntax, nil
}

// ReadRaw reads a headerless dataset encoded in syntax
func ReadRaw(in io.Reader, syntax transfer.Syntax) (*Dataset, error) {
	ds := NewDataset()
	if err := readBody(in, syntax, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func readBody(in io.Reader, syntax transfer.Syntax, ds *Dataset) error {
	if syntax.IsDeflated() {
		fr := flate.NewReader(in)
		defer fr.Close()
		in = fr
	}
	return NewReader(in, syntax).readDataset(ds, false)
}

// readDataset reads elements into ds until EOF, or until an item delimiter when
// inItem is set.
func (r *Reader) readDataset(ds *Dataset, inItem bool) error {
	for {
		t, err := r.readTag()
		if err == io.EOF {
			if inItem {
				return io.ErrUnexpectedEOF
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tag: %w", err)
		}
		if t == tag.ItemDelimitation {
			if _, err := r.readUint32(); err != nil {
				return err
			}
			if inItem {
				return nil
			}
			continue
		}
		elem, err := r.readElementWithTag(t)
		if err != nil {
			return fmt.Errorf("failed to read element %v: %w", t, err)
		}
		ds.Put(elem)
	}
}

// ReadElement reads the next element
func (r *Reader) ReadElement() (*Element, error) {
	t, err := r.readTag()
	if err != nil {
		return nil, err
	}
	return r.readElementWithTag(t)
}

// readElementWithTag reads a DICOM element after the tag has been read
func (r *Reader) readElementWithTag(t Tag) (*Element, error) {
	var vrName string
	var vl uint32

	if r.explicitVR && t.Group != 0xFFFE {
		vrBytes := make([]byte, 2)
		if _, err := io.ReadFull(r.r, vrBytes); err != nil {
			return nil, err
		}
		vrName = string(vrBytes)

		if vr.VR(vrName).HasLongLength() {
			// 2 reserved bytes then a 4 byte length
			if _, err := io.ReadFull(r.r, vrBytes); err != nil {
				return nil, err
			}
			var err error
			if vl, err = r.readUint32(); err != nil {
				return nil, err
			}
		} else {
			var vl16 uint16
			if err := binary.Read(r.r, r.order, &vl16); err != nil {
				return nil, err
			}
			vl = uint32(vl16)
		}
	} else {
		// Implicit VR: VL is always 4 bytes, VR is determined by tag
		var err error
		if vl, err = r.readUint32(); err != nil {
			return nil, err
		}
		vrName = t.LookupVR()
	}

	if t == tag.PixelData {
		pd, err := r.readPixelData(vl)
		if err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: vrName, Value: pd}, nil
	}

	if vr.VR(vrName) == vr.SQ || vl == undefinedLength {
		src := r
		if vr.VR(vrName) == vr.UN {
			// UN with undefined length is a sequence encoded as implicit VR little endian
			src = &Reader{r: r.r, order: binary.LittleEndian}
		}
		items, err := src.readSequence(vl)
		if err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: "SQ", Value: items}, nil
	}

	data := make([]byte, vl)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, err
	}
	return &Element{Tag: t, VR: vrName, Value: parseValue(vrName, data, r.order)}, nil
}

// readTag reads a DICOM tag
func (r *Reader) readTag() (Tag, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return Tag{}, err
	}
	return Tag{Group: r.order.Uint16(buf[0:]), Element: r.order.Uint16(buf[2:])}, nil
}

func (r *Reader) readUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, err
	}
	return r.order.Uint32(buf[:]), nil
}

// readSequence reads sequence items. A defined length sequence is read whole
// and parsed from memory, an undefined one runs until (FFFE,E0DD).
func (r *Reader) readSequence(vl uint32) ([]*Dataset, error) {
	src := r
	if vl != undefinedLength {
		data := make([]byte, vl)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, err
		}
		src = &Reader{r: bytes.NewReader(data), explicitVR: r.explicitVR, order: r.order}
	}

	var items []*Dataset
	for {
		t, err := src.readTag()
		if err == io.EOF && vl != undefinedLength {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading sequence item tag: %w", err)
		}
		length, err := src.readUint32()
		if err != nil {
			return nil, fmt.Errorf("reading item length: %w", err)
		}
		switch t {
		case tag.SequenceDelimitation:
			return items, nil
		case tag.Item:
		default:
			return nil, fmt.Errorf("expected item tag, got %v", t)
		}

		item := NewDataset()
		if length == undefinedLength {
			if err := src.readDataset(item, true); err != nil {
				return nil, err
			}
		} else {
			data := make([]byte, length)
			if _, err := io.ReadFull(src.r, data); err != nil {
				return nil, fmt.Errorf("reading item data: %w", err)
			}
			sub := &Reader{r: bytes.NewReader(data), explicitVR: r.explicitVR, order: r.order}
			if err := sub.readDataset(item, false); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
}

// readPixelData reads native data when the length is defined, otherwise the
// Basic Offset Table and fragments of encapsulated data.
func (r *Reader) readPixelData(vl uint32) (*PixelData, error) {
	if vl != undefinedLength {
		data := make([]byte, vl)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, err
		}
		return &PixelData{Buffers: [][]byte{data}}, nil
	}

	pd := &PixelData{Encapsulated: true}

	// Item tags and lengths inside encapsulated data are always little endian
	le := &Reader{r: r.r, order: binary.LittleEndian}

	botTag, err := le.readTag()
	if err != nil {
		return nil, err
	}
	if botTag != tag.Item {
		return nil, fmt.Errorf("expected BOT item tag, got %v", botTag)
	}
	botLength, err := le.readUint32()
	if err != nil {
		return nil, err
	}
	if botLength > 0 {
		pd.Offsets = make([]uint32, botLength/4)
		if err := binary.Read(r.r, binary.LittleEndian, pd.Offsets); err != nil {
			return nil, err
		}
	}

	for {
		itemTag, err := le.readTag()
		if err != nil {
			return nil, err
		}
		itemLength, err := le.readUint32()
		if err != nil {
			return nil, err
		}
		if itemTag == tag.SequenceDelimitation {
			return pd, nil
		}
		if itemTag != tag.Item {
			return nil, fmt.Errorf("expected item tag, got %v", itemTag)
		}
		fragment := make([]byte, itemLength)
		if _, err := io.ReadFull(r.r, fragment); err != nil {
			return nil, err
		}
		pd.Buffers = append(pd.Buffers, fragment)
	}
}

// parseValue converts raw bytes to typed value based on VR
func parseValue(name string, data []byte, order binary.ByteOrder) interface{} {
	if vr.VR(name).IsString() {
		return string(data)
	}
	switch name {
	case "US":
		values := make([]uint16, len(data)/2)
		for i := range values {
			values[i] = order.Uint16(data[i*2:])
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case "UL":
		values := make([]uint32, len(data)/4)
		for i := range values {
			values[i] = order.Uint32(data[i*4:])
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case "SS":
		values := make([]int16, len(data)/2)
		for i := range values {
			values[i] = int16(order.Uint16(data[i*2:]))
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case "SL":
		values := make([]int32, len(data)/4)
		for i := range values {
			values[i] = int32(order.Uint32(data[i*4:]))
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case "FL":
		values := make([]float32, len(data)/4)
		for i := range values {
			values[i] = math.Float32frombits(order.Uint32(data[i*4:]))
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case "FD":
		values := make([]float64, len(data)/8)
		for i := range values {
			values[i] = math.Float64frombits(order.Uint64(data[i*8:]))
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	}
	// OB, OW, UN and other binary data stay raw
	return data
}
