package dicom

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/vr"
)

func sampleDataset() *Dataset {
	ds := NewDataset()
	ds.SetString(tag.SOPClassUID, "1.2.840.10008.5.1.4.1.1.2")
	ds.SetString(tag.SOPInstanceUID, "1.2.3.4.5")
	ds.SetString(tag.PatientName, "Doe^Jane")
	ds.SetInt(tag.Rows, 2)
	ds.SetInt(tag.Columns, 2)
	ds.SetInt(tag.BitsAllocated, 16)
	ds.SetInt(tag.BitsStored, 12)
	ds.SetInt(tag.SamplesPerPixel, 1)
	ds.SetString(tag.PhotometricInterpretation, "MONOCHROME2")
	ds.Put(&Element{Tag: tag.WindowCenter, VR: "DS", Value: `40\400`})
	item := NewDataset()
	item.SetString(tag.Manufacturer, "ACME")
	ds.Put(&Element{Tag: New0009(), VR: "SQ", Value: []*Dataset{item}})
	ds.SetPixelData("OW", [][]byte{{1, 0, 2, 0, 3, 0, 4, 0}}, false)
	return ds
}

func TestRoundTripNativeSyntaxes(t *testing.T) {
	for _, syntax := range []transfer.Syntax{
		transfer.ImplicitVRLittleEndian,
		transfer.ExplicitVRLittleEndian,
		transfer.DeflatedExplicitVRLittleEndian,
		transfer.ExplicitVRBigEndian,
	} {
		t.Run(syntax.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := Write(&buf, sampleDataset(), syntax, WriteOptions{})
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			ds, got, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, syntax, got)

			rows, _ := ds.Int(tag.Rows)
			assert.Equal(t, 2, rows)
			bs, _ := ds.Int(tag.BitsStored)
			assert.Equal(t, 12, bs)
			name, _ := ds.String(tag.PatientName)
			assert.Equal(t, "Doe^Jane", name)
			wc, _ := ds.Elements[tag.WindowCenter].GetFloats()
			assert.Equal(t, []float64{40, 400}, wc)

			pd, ok := ds.PixelData()
			require.True(t, ok)
			assert.False(t, pd.Encapsulated)
			assert.Equal(t, []byte{1, 0, 2, 0, 3, 0, 4, 0}, pd.Bytes())

			if syntax.IsExplicitVR() {
				items, ok := ds.Elements[New0009()].GetSequence()
				require.True(t, ok)
				require.Len(t, items, 1)
				m, _ := items[0].String(tag.Manufacturer)
				assert.Equal(t, "ACME", m)
			}
		})
	}
}

func TestFileMetaRegenerated(t *testing.T) {
	ds := NewDataset()
	ds.SetString(tag.TransferSyntaxUID, "stale")
	var buf bytes.Buffer
	_, err := Write(&buf, ds, transfer.ExplicitVRLittleEndian, WriteOptions{})
	require.NoError(t, err)

	raw := buf.Bytes()
	assert.Equal(t, "DICM", string(raw[128:132]))
	// group length covers the remaining meta elements
	groupLength := binary.LittleEndian.Uint32(raw[140:144])
	assert.Equal(t, len(raw)-144, int(groupLength))

	got, syntax, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, transfer.ExplicitVRLittleEndian, syntax)
	class, _ := got.String(tag.MediaStorageSOPClassUID)
	assert.Equal(t, SecondaryCaptureUID, class)
	inst, _ := got.String(tag.MediaStorageSOPInstanceUID)
	assert.Regexp(t, `^2\.25\.`, inst)
	impl, _ := got.String(tag.ImplementationClassUID)
	assert.Equal(t, ImplementationClassUID, impl)
	version := got.Elements[tag.FileMetaInformationVersion].Value
	assert.Equal(t, []byte{0x00, 0x01}, version)
}

func TestEncapsulatedRoundTrip(t *testing.T) {
	ds := sampleDataset()
	ds.SetPixelData("OB", [][]byte{{0xAA, 0xBB, 0xCC}, {0xDD, 0xEE}}, true)

	var buf bytes.Buffer
	_, err := Write(&buf, ds, transfer.RLELossless, WriteOptions{})
	require.NoError(t, err)

	got, syntax, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, transfer.RLELossless, syntax)
	pd, ok := got.PixelData()
	require.True(t, ok)
	assert.True(t, pd.Encapsulated)
	assert.Empty(t, pd.Offsets)
	// odd fragments are padded to even length
	assert.Equal(t, [][]byte{{0xAA, 0xBB, 0xCC, 0x00}, {0xDD, 0xEE}}, pd.Buffers)
}

func TestFragmentMultiframe(t *testing.T) {
	ds := NewDataset()
	big := bytes.Repeat([]byte{7}, fragmentSize*2+10)
	ds.SetPixelData("OB", [][]byte{big, {1, 2}}, true)

	var buf bytes.Buffer
	_, err := Write(&buf, ds, transfer.JPEG2000Lossless, WriteOptions{FragmentMultiframe: true})
	require.NoError(t, err)
	got, _, err := Read(&buf)
	require.NoError(t, err)
	pd, _ := got.PixelData()
	require.Len(t, pd.Buffers, 4)
	assert.Len(t, pd.Buffers[0], fragmentSize)
	assert.Len(t, pd.Buffers[2], 10)
	assert.Equal(t, []uint32{0, 3*8 + 2*fragmentSize + 10}, pd.Offsets)
}

func TestEncodeValueByteOrder(t *testing.T) {
	tests := []struct {
		name  string
		order byteOrder
		value any
		vr    vr.VR
		want  []byte
	}{
		{"LittleUS", binary.LittleEndian, uint16(0x0102), vr.US, []byte{0x02, 0x01}},
		{"BigUS", binary.BigEndian, uint16(0x0102), vr.US, []byte{0x01, 0x02}},
		{"BigUL", binary.BigEndian, []uint32{1, 2}, vr.UL, []byte{0, 0, 0, 1, 0, 0, 0, 2}},
		{"BigSS", binary.BigEndian, int16(-2), vr.SS, []byte{0xff, 0xfe}},
		{"BigIntAsUS", binary.BigEndian, 7, vr.US, []byte{0x00, 0x07}},
		{"LittleFL", binary.LittleEndian, float32(1), vr.FL, []byte{0x00, 0x00, 0x80, 0x3f}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wr := &writer{order: tt.order, explicitVR: true}
			got, undefined, err := wr.encodeValue(tt.value, tt.vr)
			require.NoError(t, err)
			assert.False(t, undefined)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRaw(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteRaw(&buf, sampleDataset(), transfer.ExplicitVRBigEndian)
	require.NoError(t, err)
	ds, err := ReadRaw(&buf, transfer.ExplicitVRBigEndian)
	require.NoError(t, err)
	cols, _ := ds.Int(tag.Columns)
	assert.Equal(t, 2, cols)
}

func TestReadRejectsMissingMagic(t *testing.T) {
	_, _, err := Read(bytes.NewReader(make([]byte, 200)))
	require.Error(t, err)
	_, _, err = Read(bytes.NewReader(make([]byte, 10)))
	require.Error(t, err)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.dcm")
	_, err := WriteFile(path, sampleDataset(), transfer.ExplicitVRLittleEndian, WriteOptions{})
	require.NoError(t, err)
	ds, syntax, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, transfer.ExplicitVRLittleEndian, syntax)
	assert.Contains(t, ds.Dump(), "PatientName: Doe^Jane")
}
