package dicom

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
)

// charsets maps Specific Character Set defined terms to decoders
var charsets = map[string]encoding.Encoding{
	"ISO_IR 6":        unicode.UTF8,
	"ISO_IR 13":       japanese.ShiftJIS,
	"ISO_IR 100":      charmap.ISO8859_1,
	"ISO_IR 101":      charmap.ISO8859_2,
	"ISO_IR 109":      charmap.ISO8859_3,
	"ISO_IR 110":      charmap.ISO8859_4,
	"ISO_IR 126":      charmap.ISO8859_7,
	"ISO_IR 127":      charmap.ISO8859_6,
	"ISO_IR 138":      charmap.ISO8859_8,
	"ISO_IR 144":      charmap.ISO8859_5,
	"ISO_IR 148":      charmap.ISO8859_9,
	"ISO_IR 166":      charmap.Windows874,
	"ISO_IR 192":      unicode.UTF8,
	"ISO 2022 IR 6":   unicode.UTF8,
	"ISO 2022 IR 87":  japanese.ISO2022JP,
	"ISO 2022 IR 100": charmap.ISO8859_1,
	"ISO 2022 IR 149": korean.EUCKR,
	"GB18030":         simplifiedchinese.GB18030,
	"GBK":             simplifiedchinese.GBK,
}

// DecodeText converts a raw string value to UTF-8 using the dataset's
// SpecificCharacterSet. Only the first term of a multi-valued character set
// is honoured; unknown terms return the value unchanged.
func (ds *Dataset) DecodeText(raw string) string {
	cs, ok := ds.String(tag.SpecificCharacterSet)
	if !ok {
		return raw
	}
	term, _, _ := strings.Cut(cs, `\`)
	enc, ok := charsets[strings.TrimSpace(term)]
	if !ok {
		return raw
	}
	res, err := enc.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return res
}
