package dicom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String returns a one line summary of the Element
func (e *Element) String() string {
	return e.format(nil)
}

func (e *Element) format(ds *Dataset) string {
	// Format: [Tag] VR Name: Value
	tagName := e.Tag.LookupName()
	if tagName != "" {
		tagName = " " + tagName
	}

	valStr := ""
	switch v := e.Value.(type) {
	case *PixelData:
		if v.Encapsulated {
			valStr = fmt.Sprintf("Encapsulated (%d fragments, %d bytes)", len(v.Buffers), v.Len())
		} else {
			valStr = fmt.Sprintf("Native (%d bytes)", v.Len())
		}
	case []*Dataset:
		valStr = fmt.Sprintf("Sequence (%d items)", len(v))
	case []uint16:
		if len(v) > 10 {
			valStr = fmt.Sprintf("Array of %d values", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []byte:
		if len(v) > 20 {
			valStr = fmt.Sprintf("Binary Data (%d bytes)", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case string:
		valStr = strings.TrimRight(v, " \x00")
		if ds != nil {
			valStr = ds.DecodeText(valStr)
		}
	default:
		valStr = fmt.Sprintf("%v", v)
	}

	return fmt.Sprintf("[%s] %s%s: %s", e.Tag.Hex(), e.VR, tagName, valStr)
}

// MarshalJSON returns a JSON representation of the Element
func (e *Element) MarshalJSON() ([]byte, error) {
	var value interface{} = e.Value
	switch v := e.Value.(type) {
	case *PixelData:
		value = map[string]interface{}{
			"encapsulated": v.Encapsulated,
			"fragments":    len(v.Buffers),
			"bytes":        v.Len(),
		}
	case string:
		value = strings.TrimRight(v, " \x00")
	}
	return json.Marshal(&struct {
		Tag   string      `json:"tag"`
		Name  string      `json:"name,omitempty"`
		VR    string      `json:"vr"`
		Value interface{} `json:"value"`
	}{
		Tag:   e.Tag.Hex(),
		Name:  e.Tag.LookupName(),
		VR:    e.VR,
		Value: value,
	})
}

// Dump returns one line per element in tag order, string values decoded
// through the SpecificCharacterSet
func (ds *Dataset) Dump() string {
	if ds == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, k := range ds.Tags() {
		b.WriteString(ds.Elements[k].format(ds))
		b.WriteString("\n")
	}
	return b.String()
}

// MarshalJSON returns a JSON representation of the Dataset
// It returns a sorted array of Elements instead of a Map
func (ds *Dataset) MarshalJSON() ([]byte, error) {
	elements := make([]*Element, 0, len(ds.Elements))
	for _, k := range ds.Tags() {
		elements = append(elements, ds.Elements[k])
	}
	return json.Marshal(elements)
}
