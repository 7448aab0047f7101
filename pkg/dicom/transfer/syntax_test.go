package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		syntax Syntax
		want   Profile
		ok     bool
	}{
		{"ImplicitLE", ImplicitVRLittleEndian, Profile{}, true},
		{"ExplicitBE", ExplicitVRBigEndian, Profile{BigEndian: true}, true},
		{"RLE", RLELossless, Profile{Encapsulated: true}, true},
		{"Baseline", JPEGBaseline, Profile{Lossy: true, Encapsulated: true}, true},
		{"LSNear", JPEGLSNearLossless, Profile{Lossy: true, Encapsulated: true}, true},
		{"HTRPCL", HTJ2KLosslessRPCL, Profile{Encapsulated: true}, true},
		{"Unknown", Syntax("1.2.3"), Profile{}, false},
		{"Extended", Syntax("1.2.840.10008.1.2.4.51"), Profile{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.syntax)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, tt.syntax.IsSupported())
		})
	}
}

func TestSupportedHasOneProfileEach(t *testing.T) {
	seen := map[Syntax]bool{}
	for _, s := range Supported() {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
		_, ok := Lookup(s)
		assert.True(t, ok, "missing profile for %s", s)
		assert.NotEqual(t, string(s), s.Name(), "missing name for %s", s)
	}
	assert.Len(t, seen, len(profiles))
}

func TestSyntaxPredicates(t *testing.T) {
	assert.False(t, ImplicitVRLittleEndian.IsExplicitVR())
	assert.True(t, ExplicitVRBigEndian.IsExplicitVR())
	assert.False(t, ExplicitVRBigEndian.IsLittleEndian())
	assert.True(t, DeflatedExplicitVRLittleEndian.IsDeflated())
	assert.False(t, DeflatedExplicitVRLittleEndian.IsEncapsulated())
	assert.True(t, Syntax("1.2.3.4").IsEncapsulated())
	assert.True(t, JPEGLSNearLossless.IsJPEGLS())
	assert.True(t, HTJ2K.IsHTJ2K())
	assert.False(t, JPEG2000.IsHTJ2K())
}

func TestFromUID(t *testing.T) {
	assert.Equal(t, ExplicitVRLittleEndian, FromUID("1.2.840.10008.1.2.1\x00"))
	assert.Equal(t, RLELossless, FromUID("1.2.840.10008.1.2.5 "))
}
