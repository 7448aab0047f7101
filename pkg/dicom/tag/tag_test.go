package tag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		vr   string
	}{
		{"Rows", Rows, "US"},
		{"PhotometricInterpretation", PhotometricInterpretation, "CS"},
		{"NumberOfFrames", NumberOfFrames, "IS"},
		{"LossyImageCompressionRatio", LossyImageCompressionRatio, "DS"},
		{"PixelData", PixelData, "OW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tag.LookupName())
			assert.Equal(t, tt.vr, tt.tag.LookupVR())
			got, ok := ByName(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.tag, got)
		})
	}
}

func TestUnknownTag(t *testing.T) {
	private := New(0x0009, 0x0010)
	assert.True(t, private.IsPrivate())
	assert.Equal(t, "", private.LookupName())
	assert.Equal(t, "UN", private.LookupVR())
	assert.Equal(t, "UL", New(0x0028, 0x0000).LookupVR())
	_, ok := ByName("NotATag")
	assert.False(t, ok)
}

func TestOrderingAndString(t *testing.T) {
	assert.True(t, Rows.Less(Columns))
	assert.True(t, TransferSyntaxUID.Less(Rows))
	assert.False(t, PixelData.Less(Rows))
	assert.Equal(t, "(7FE0,0010)", PixelData.Hex())
	assert.Equal(t, "(7FE0,0010) PixelData", PixelData.String())
	assert.Equal(t, "(0009,0010)", New(0x0009, 0x0010).String())
	b, err := json.Marshal(Rows)
	require.NoError(t, err)
	assert.Equal(t, `"(0028,0010)"`, string(b))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"Rows", Rows},
		{" PixelData ", PixelData},
		{"(0028,0011)", Columns},
		{"0028,0011", Columns},
		{"7fe00010", PixelData},
		{"(0009, 1001)", New(0x0009, 0x1001)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"", "Rowz", "(0028)", "0028,00GG"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestTagJSON(t *testing.T) {
	var got struct {
		Tags []Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["Rows","(7FE0,0010)"]}`), &got))
	assert.Equal(t, []Tag{Rows, PixelData}, got.Tags)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":["(0028,0010)","(7FE0,0010)"]}`, string(b))
	assert.Error(t, json.Unmarshal([]byte(`["bogus"]`), &got.Tags))
}
