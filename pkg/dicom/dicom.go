// Package dicom reads and writes DICOM Part 10 streams and headerless
// datasets in any of the transfer syntaxes listed by package transfer.
//
// Basic usage:
//
//	ds, syntax, err := dicom.ReadFile("/path/to/file.dcm")
//	if err != nil {
//		log.Fatal(err)
//	}
//	pd, ok := ds.PixelData()
//
// Pixel data buffers are kept in the byte order of syntax; converting them is
// the job of package codec.
package dicom

import (
	"fmt"
	"os"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
)

// ReadFile reads a Part 10 file from disk
func ReadFile(path string) (*Dataset, transfer.Syntax, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
