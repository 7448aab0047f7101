// Package vr classifies DICOM Value Representations for the element codec
package vr

// VR represents a DICOM Value Representation
type VR string

const (
	AE VR = "AE"
	AS VR = "AS"
	AT VR = "AT"
	CS VR = "CS"
	DA VR = "DA"
	DS VR = "DS"
	DT VR = "DT"
	FL VR = "FL"
	FD VR = "FD"
	IS VR = "IS"
	LO VR = "LO"
	LT VR = "LT"
	OB VR = "OB"
	OD VR = "OD"
	OF VR = "OF"
	OL VR = "OL"
	OV VR = "OV"
	OW VR = "OW"
	PN VR = "PN"
	SH VR = "SH"
	SL VR = "SL"
	SQ VR = "SQ"
	SS VR = "SS"
	ST VR = "ST"
	SV VR = "SV"
	TM VR = "TM"
	UC VR = "UC"
	UI VR = "UI"
	UL VR = "UL"
	UN VR = "UN"
	UR VR = "UR"
	US VR = "US"
	UT VR = "UT"
	UV VR = "UV"
)

// HasLongLength reports whether explicit VR headers carry 2 reserved bytes
// and a 4 byte length for v
func (v VR) HasLongLength() bool {
	switch v {
	case OB, OD, OF, OL, OV, OW, SQ, SV, UC, UN, UR, UT, UV:
		return true
	}
	return false
}

// IsString reports whether values of v are character strings
func (v VR) IsString() bool {
	switch v {
	case AE, AS, CS, DA, DS, DT, IS, LO, LT, PN, SH, ST, TM, UC, UI, UR, UT:
		return true
	}
	return false
}

// Padding is the byte appended to odd length values
func (v VR) Padding() byte {
	if v.IsString() && v != UI {
		return ' '
	}
	return 0
}

// ValueSize returns the size of one value for fixed width binary VRs, 0 otherwise
func (v VR) ValueSize() int {
	switch v {
	case SS, US:
		return 2
	case AT, FL, SL, UL:
		return 4
	case FD, SV, UV:
		return 8
	}
	return 0
}
