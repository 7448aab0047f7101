// Package tag defines standard DICOM tags and a small dictionary of the attributes this module reads and writes
package tag

// Tag represents a DICOM tag with Group and Element
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a new Tag
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// Equals compares two tags
func (t Tag) Equals(other Tag) bool {
	return t.Group == other.Group && t.Element == other.Element
}

// Less orders tags by group, then element
func (t Tag) Less(other Tag) bool {
	if t.Group != other.Group {
		return t.Group < other.Group
	}
	return t.Element < other.Element
}

// IsPrivate returns true if this is a private tag (odd group number)
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsGroup0002 returns true if this tag is in the File Meta Information group
func (t Tag) IsGroup0002() bool {
	return t.Group == 0x0002
}

// IsGroupLength returns true for (gggg,0000) group length elements
func (t Tag) IsGroupLength() bool {
	return t.Element == 0x0000
}

// File Meta Information (Group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
)

// SOP Common, Patient, Study and Series
var (
	SpecificCharacterSet = Tag{0x0008, 0x0005}
	ImageType            = Tag{0x0008, 0x0008}
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	StudyDate            = Tag{0x0008, 0x0020}
	Modality             = Tag{0x0008, 0x0060}
	Manufacturer         = Tag{0x0008, 0x0070}
	SeriesDescription    = Tag{0x0008, 0x103E}
	PatientName          = Tag{0x0010, 0x0010}
	PatientID            = Tag{0x0010, 0x0020}
	StudyInstanceUID     = Tag{0x0020, 0x000D}
	SeriesInstanceUID    = Tag{0x0020, 0x000E}
	InstanceNumber       = Tag{0x0020, 0x0013}
)

// Image Pixel Module (Group 0028)
var (
	SamplesPerPixel             = Tag{0x0028, 0x0002}
	PhotometricInterpretation   = Tag{0x0028, 0x0004}
	PlanarConfiguration         = Tag{0x0028, 0x0006}
	NumberOfFrames              = Tag{0x0028, 0x0008}
	Rows                        = Tag{0x0028, 0x0010}
	Columns                     = Tag{0x0028, 0x0011}
	PixelSpacing                = Tag{0x0028, 0x0030}
	BitsAllocated               = Tag{0x0028, 0x0100}
	BitsStored                  = Tag{0x0028, 0x0101}
	HighBit                     = Tag{0x0028, 0x0102}
	PixelRepresentation         = Tag{0x0028, 0x0103}
	WindowCenter                = Tag{0x0028, 0x1050}
	WindowWidth                 = Tag{0x0028, 0x1051}
	RescaleIntercept            = Tag{0x0028, 0x1052}
	RescaleSlope                = Tag{0x0028, 0x1053}
	LossyImageCompression       = Tag{0x0028, 0x2110} // CS - "00" or "01"
	LossyImageCompressionRatio  = Tag{0x0028, 0x2112} // DS
	LossyImageCompressionMethod = Tag{0x0028, 0x2114} // CS - ISO_10918_1 etc
)

// Pixel Data and item delimiters
var (
	PixelData            = Tag{0x7FE0, 0x0010}
	Item                 = Tag{0xFFFE, 0xE000}
	ItemDelimitation     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitation = Tag{0xFFFE, 0xE0DD}
)
