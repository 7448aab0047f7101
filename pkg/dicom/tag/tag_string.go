package tag

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hex formats the tag as (GGGG,EEEE)
func (t Tag) Hex() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// String is the hex form followed by the dictionary keyword when one is known
func (t Tag) String() string {
	if name := t.LookupName(); name != "" {
		return t.Hex() + " " + name
	}
	return t.Hex()
}

// Parse accepts a keyword ("Rows"), "(0028,0010)", "0028,0010" or "00280010"
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if t, ok := ByName(s); ok {
		return t, nil
	}
	hex := strings.NewReplacer("(", "", ")", "", ",", "", " ", "").Replace(s)
	if len(hex) != 8 {
		return Tag{}, fmt.Errorf("tag: cannot parse %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Tag{}, fmt.Errorf("tag: cannot parse %q: %w", s, err)
	}
	return New(uint16(v>>16), uint16(v)), nil
}

// MarshalJSON writes the hex form so keywords never leak into identifiers
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Hex())
}

// UnmarshalJSON reads any form Parse accepts
func (t *Tag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
