package tag

// Info is a dictionary entry
type Info struct {
	Tag  Tag
	VR   string
	Name string
}

var dictionary = map[Tag]Info{}
var byName = map[string]Tag{}

func init() {
	for _, i := range []Info{
		{FileMetaInformationGroupLength, "UL", "FileMetaInformationGroupLength"},
		{FileMetaInformationVersion, "OB", "FileMetaInformationVersion"},
		{MediaStorageSOPClassUID, "UI", "MediaStorageSOPClassUID"},
		{MediaStorageSOPInstanceUID, "UI", "MediaStorageSOPInstanceUID"},
		{TransferSyntaxUID, "UI", "TransferSyntaxUID"},
		{ImplementationClassUID, "UI", "ImplementationClassUID"},
		{ImplementationVersionName, "SH", "ImplementationVersionName"},
		{SpecificCharacterSet, "CS", "SpecificCharacterSet"},
		{ImageType, "CS", "ImageType"},
		{SOPClassUID, "UI", "SOPClassUID"},
		{SOPInstanceUID, "UI", "SOPInstanceUID"},
		{StudyDate, "DA", "StudyDate"},
		{Modality, "CS", "Modality"},
		{Manufacturer, "LO", "Manufacturer"},
		{SeriesDescription, "LO", "SeriesDescription"},
		{PatientName, "PN", "PatientName"},
		{PatientID, "LO", "PatientID"},
		{StudyInstanceUID, "UI", "StudyInstanceUID"},
		{SeriesInstanceUID, "UI", "SeriesInstanceUID"},
		{InstanceNumber, "IS", "InstanceNumber"},
		{SamplesPerPixel, "US", "SamplesPerPixel"},
		{PhotometricInterpretation, "CS", "PhotometricInterpretation"},
		{PlanarConfiguration, "US", "PlanarConfiguration"},
		{NumberOfFrames, "IS", "NumberOfFrames"},
		{Rows, "US", "Rows"},
		{Columns, "US", "Columns"},
		{PixelSpacing, "DS", "PixelSpacing"},
		{BitsAllocated, "US", "BitsAllocated"},
		{BitsStored, "US", "BitsStored"},
		{HighBit, "US", "HighBit"},
		{PixelRepresentation, "US", "PixelRepresentation"},
		{WindowCenter, "DS", "WindowCenter"},
		{WindowWidth, "DS", "WindowWidth"},
		{RescaleIntercept, "DS", "RescaleIntercept"},
		{RescaleSlope, "DS", "RescaleSlope"},
		{LossyImageCompression, "CS", "LossyImageCompression"},
		{LossyImageCompressionRatio, "DS", "LossyImageCompressionRatio"},
		{LossyImageCompressionMethod, "CS", "LossyImageCompressionMethod"},
		{PixelData, "OW", "PixelData"},
	} {
		dictionary[i.Tag] = i
		byName[i.Name] = i.Tag
	}
}

// LookupName returns a human-readable name for known tags
func (t Tag) LookupName() string {
	return dictionary[t].Name
}

// LookupVR returns the dictionary VR, "UN" when the tag is unknown.
// Group length elements are always UL.
func (t Tag) LookupVR() string {
	if i, ok := dictionary[t]; ok {
		return i.VR
	}
	if t.IsGroupLength() {
		return "UL"
	}
	return "UN"
}

// ByName resolves an attribute keyword such as "Rows" to its tag
func ByName(name string) (Tag, bool) {
	t, ok := byName[name]
	return t, ok
}
