package dicom

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

// Dataset represents a complete DICOM dataset
type Dataset struct {
	Elements map[Tag]*Element
}

// Element represents a single DICOM element
type Element struct {
	Tag   Tag
	VR    string      // Value Representation
	Value interface{} // Parsed value
}

// Tag alias to avoid duplication
type Tag = tag.Tag

// PixelData holds the Pixel Data attribute. Native data is a single buffer,
// encapsulated data is one buffer per fragment. Buffers are kept in the byte
// order of the transfer syntax they were read or encoded in.
type PixelData struct {
	Encapsulated bool
	Offsets      []uint32 // Basic Offset Table for encapsulated data
	Buffers      [][]byte
}

// Len returns the total number of pixel bytes across all buffers
func (pd *PixelData) Len() int {
	n := 0
	for _, b := range pd.Buffers {
		n += len(b)
	}
	return n
}

// Bytes returns all buffers concatenated
func (pd *PixelData) Bytes() []byte {
	if len(pd.Buffers) == 1 {
		return pd.Buffers[0]
	}
	res := make([]byte, 0, pd.Len())
	for _, b := range pd.Buffers {
		res = append(res, b...)
	}
	return res
}

// NewDataset returns an empty dataset
func NewDataset() *Dataset {
	return &Dataset{Elements: make(map[Tag]*Element)}
}

// Tags returns the element tags in ascending order
func (ds *Dataset) Tags() []Tag {
	keys := make([]Tag, 0, len(ds.Elements))
	for k := range ds.Elements {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Tag) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return keys
}

// Has reports whether the dataset holds an element for t
func (ds *Dataset) Has(t Tag) bool {
	_, ok := ds.Elements[t]
	return ok
}

// Delete removes the element for t
func (ds *Dataset) Delete(t Tag) {
	delete(ds.Elements, t)
}

// Put stores elem, replacing any previous value for the same tag
func (ds *Dataset) Put(elem *Element) {
	ds.Elements[elem.Tag] = elem
}

// Int returns the first value of t as an int
func (ds *Dataset) Int(t Tag) (int, bool) {
	elem, ok := ds.Elements[t]
	if !ok {
		return 0, false
	}
	return elem.GetInt()
}

// String returns the value of t as a string with padding removed
func (ds *Dataset) String(t Tag) (string, bool) {
	elem, ok := ds.Elements[t]
	if !ok {
		return "", false
	}
	return elem.GetString()
}

// SetInt stores v using the dictionary VR of t
func (ds *Dataset) SetInt(t Tag, v int) {
	vr := t.LookupVR()
	var val interface{}
	switch vr {
	case "US":
		val = uint16(v)
	case "UL":
		val = uint32(v)
	case "SS":
		val = int16(v)
	case "SL":
		val = int32(v)
	default:
		if vr != "DS" {
			vr = "IS"
		}
		val = strconv.Itoa(v)
	}
	ds.Elements[t] = &Element{Tag: t, VR: vr, Value: val}
}

// SetString stores s using the dictionary VR of t, LO when the tag is unknown
func (ds *Dataset) SetString(t Tag, s string) {
	vr := t.LookupVR()
	if vr == "UN" {
		vr = "LO"
	}
	ds.Elements[t] = &Element{Tag: t, VR: vr, Value: s}
}

// PixelData returns the Pixel Data attribute when present
func (ds *Dataset) PixelData() (*PixelData, bool) {
	elem, ok := ds.Elements[tag.PixelData]
	if !ok {
		return nil, false
	}
	return elem.GetPixelData()
}

// SetPixelData replaces the Pixel Data attribute
func (ds *Dataset) SetPixelData(vr string, buffers [][]byte, encapsulated bool) {
	ds.Elements[tag.PixelData] = &Element{
		Tag: tag.PixelData,
		VR:  vr,
		Value: &PixelData{
			Encapsulated: encapsulated,
			Buffers:      buffers,
		},
	}
}

// Clone returns a deep copy of the dataset
func (ds *Dataset) Clone() *Dataset {
	if ds == nil {
		return nil
	}
	res := &Dataset{Elements: make(map[Tag]*Element, len(ds.Elements))}
	for t, elem := range ds.Elements {
		res.Elements[t] = elem.Clone()
	}
	return res
}

// Clone returns a deep copy of the element
func (elem *Element) Clone() *Element {
	res := &Element{Tag: elem.Tag, VR: elem.VR}
	switch v := elem.Value.(type) {
	case *PixelData:
		pd := &PixelData{
			Encapsulated: v.Encapsulated,
			Offsets:      slices.Clone(v.Offsets),
			Buffers:      make([][]byte, len(v.Buffers)),
		}
		for i, b := range v.Buffers {
			pd.Buffers[i] = slices.Clone(b)
		}
		res.Value = pd
	case []*Dataset:
		items := make([]*Dataset, len(v))
		for i, item := range v {
			items[i] = item.Clone()
		}
		res.Value = items
	case []byte:
		res.Value = slices.Clone(v)
	case []uint16:
		res.Value = slices.Clone(v)
	case []uint32:
		res.Value = slices.Clone(v)
	case []int16:
		res.Value = slices.Clone(v)
	case []int32:
		res.Value = slices.Clone(v)
	case []float32:
		res.Value = slices.Clone(v)
	case []float64:
		res.Value = slices.Clone(v)
	default:
		res.Value = v
	}
	return res
}

// GetString returns a string value from an element
func (elem *Element) GetString() (string, bool) {
	if s, ok := elem.Value.(string); ok {
		return strings.TrimRight(s, " \x00"), true
	}
	return "", false
}

// GetInt returns the first value of an element as an int
func (elem *Element) GetInt() (int, bool) {
	switch v := elem.Value.(type) {
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	case []uint16:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case []uint32:
		if len(v) > 0 {
			return int(v[0]), true
		}
	case string:
		s, _, _ := strings.Cut(v, `\`)
		if i, err := strconv.Atoi(strings.Trim(s, " \x00")); err == nil {
			return i, true
		}
	case []byte:
		if len(v) == 2 {
			return int(binary.LittleEndian.Uint16(v)), true
		}
		if len(v) == 4 {
			return int(binary.LittleEndian.Uint32(v)), true
		}
	}
	return 0, false
}

// GetFloats returns a slice of float64s from an element
func (elem *Element) GetFloats() ([]float64, bool) {
	switch v := elem.Value.(type) {
	case []float32:
		res := make([]float64, len(v))
		for i, val := range v {
			res[i] = float64(val)
		}
		return res, true
	case []float64:
		return v, true
	case float32:
		return []float64{float64(v)}, true
	case float64:
		return []float64{v}, true
	case string:
		var res []float64
		for _, s := range strings.Split(strings.Trim(v, " \x00"), `\`) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			res = append(res, f)
		}
		return res, true
	}
	return nil, false
}

// GetPixelData returns pixel data from an element
func (elem *Element) GetPixelData() (*PixelData, bool) {
	if pd, ok := elem.Value.(*PixelData); ok {
		return pd, true
	}
	return nil, false
}

// GetSequence returns the items of a sequence element
func (elem *Element) GetSequence() ([]*Dataset, bool) {
	if items, ok := elem.Value.([]*Dataset); ok {
		return items, true
	}
	return nil, false
}
