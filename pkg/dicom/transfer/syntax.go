// Package transfer defines DICOM Transfer Syntaxes and the profile table used to plan transcoding.
package transfer

// Syntax represents a DICOM Transfer Syntax
type Syntax string

// Standard Transfer Syntaxes
const (
	// Uncompressed
	ImplicitVRLittleEndian         Syntax = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         Syntax = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian Syntax = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            Syntax = "1.2.840.10008.1.2.2" // Retired

	// Run-length
	RLELossless Syntax = "1.2.840.10008.1.2.5"

	// JPEG
	JPEGBaseline    Syntax = "1.2.840.10008.1.2.4.50"
	JPEGLosslessSV1 Syntax = "1.2.840.10008.1.2.4.70" // Process 14, first-order prediction

	// JPEG-LS
	JPEGLSLossless     Syntax = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless Syntax = "1.2.840.10008.1.2.4.81"

	// JPEG 2000
	JPEG2000Lossless Syntax = "1.2.840.10008.1.2.4.90"
	JPEG2000         Syntax = "1.2.840.10008.1.2.4.91"

	// High-Throughput JPEG 2000
	HTJ2KLossless     Syntax = "1.2.840.10008.1.2.4.201"
	HTJ2KLosslessRPCL Syntax = "1.2.840.10008.1.2.4.202"
	HTJ2K             Syntax = "1.2.840.10008.1.2.4.203"
)

// Profile describes how pixel data is carried by a transfer syntax.
type Profile struct {
	Lossy        bool // may discard information
	Encapsulated bool // fragment based, requires an entropy codec
	BigEndian    bool // native byte order is reversed
}

var profiles = map[Syntax]Profile{
	ImplicitVRLittleEndian:         {},
	ExplicitVRLittleEndian:         {},
	DeflatedExplicitVRLittleEndian: {},
	ExplicitVRBigEndian:            {BigEndian: true},
	RLELossless:                    {Encapsulated: true},
	JPEGBaseline:                   {Lossy: true, Encapsulated: true},
	JPEGLosslessSV1:                {Encapsulated: true},
	JPEGLSLossless:                 {Encapsulated: true},
	JPEGLSNearLossless:             {Lossy: true, Encapsulated: true},
	JPEG2000Lossless:               {Encapsulated: true},
	JPEG2000:                       {Lossy: true, Encapsulated: true},
	HTJ2KLossless:                  {Encapsulated: true},
	HTJ2KLosslessRPCL:              {Encapsulated: true},
	HTJ2K:                          {Lossy: true, Encapsulated: true},
}

// Lookup returns the profile registered for s.
func Lookup(s Syntax) (Profile, bool) {
	p, ok := profiles[s]
	return p, ok
}

// Supported lists every syntax with a profile, in UID order.
func Supported() []Syntax {
	return []Syntax{
		ImplicitVRLittleEndian,
		ExplicitVRLittleEndian,
		DeflatedExplicitVRLittleEndian,
		ExplicitVRBigEndian,
		RLELossless,
		JPEGBaseline,
		JPEGLosslessSV1,
		JPEGLSLossless,
		JPEGLSNearLossless,
		JPEG2000Lossless,
		JPEG2000,
		HTJ2KLossless,
		HTJ2KLosslessRPCL,
		HTJ2K,
	}
}

// IsSupported returns true if s has a profile entry
func (s Syntax) IsSupported() bool {
	_, ok := profiles[s]
	return ok
}

// Profile returns the profile for s, the zero Profile when unknown
func (s Syntax) Profile() Profile {
	return profiles[s]
}

// IsExplicitVR returns true if this transfer syntax uses explicit VR
func (s Syntax) IsExplicitVR() bool {
	return s != ImplicitVRLittleEndian
}

// IsLittleEndian returns true if this transfer syntax uses little endian byte order
func (s Syntax) IsLittleEndian() bool {
	return s != ExplicitVRBigEndian
}

// IsDeflated returns true if the dataset body is deflate compressed
func (s Syntax) IsDeflated() bool {
	return s == DeflatedExplicitVRLittleEndian
}

// IsEncapsulated returns true if pixel data is encapsulated (compressed).
// Unknown syntaxes are treated as encapsulated, matching how the container reads them.
func (s Syntax) IsEncapsulated() bool {
	if p, ok := profiles[s]; ok {
		return p.Encapsulated
	}
	return true
}

// IsJPEGLS returns true if this is a JPEG-LS transfer syntax
func (s Syntax) IsJPEGLS() bool {
	return s == JPEGLSLossless || s == JPEGLSNearLossless
}

// IsHTJ2K returns true if this is a High-Throughput JPEG 2000 transfer syntax
func (s Syntax) IsHTJ2K() bool {
	return s == HTJ2KLossless || s == HTJ2KLosslessRPCL || s == HTJ2K
}

// Name returns a human-readable name for the transfer syntax
func (s Syntax) Name() string {
	switch s {
	case ImplicitVRLittleEndian:
		return "Implicit VR Little Endian"
	case ExplicitVRLittleEndian:
		return "Explicit VR Little Endian"
	case DeflatedExplicitVRLittleEndian:
		return "Deflated Explicit VR Little Endian"
	case ExplicitVRBigEndian:
		return "Explicit VR Big Endian (Retired)"
	case RLELossless:
		return "RLE Lossless"
	case JPEGBaseline:
		return "JPEG Baseline (Process 1)"
	case JPEGLosslessSV1:
		return "JPEG Lossless First-Order (Process 14, SV1)"
	case JPEGLSLossless:
		return "JPEG-LS Lossless"
	case JPEGLSNearLossless:
		return "JPEG-LS Near-Lossless"
	case JPEG2000Lossless:
		return "JPEG 2000 Lossless"
	case JPEG2000:
		return "JPEG 2000"
	case HTJ2KLossless:
		return "HTJ2K Lossless"
	case HTJ2KLosslessRPCL:
		return "HTJ2K Lossless RPCL"
	case HTJ2K:
		return "HTJ2K"
	default:
		return string(s)
	}
}

// FromUID converts a UID string to a Syntax, dropping any trailing NUL or space padding
func FromUID(uid string) Syntax {
	for len(uid) > 0 && (uid[len(uid)-1] == 0 || uid[len(uid)-1] == ' ') {
		uid = uid[:len(uid)-1]
	}
	return Syntax(uid)
}
