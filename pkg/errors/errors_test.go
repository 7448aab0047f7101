package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{
			name: "Syntax",
			err:  NewSyntaxError("1.2.3", ErrUnsupportedSyntax),
			kind: ErrUnsupportedSyntax,
			msg:  "dicom: unsupported transfer syntax [syntax: 1.2.3]",
		},
		{
			name: "Frame",
			err:  NewFrameError(4, ErrFrameRange),
			kind: ErrFrameRange,
			msg:  "dicom: frame index out of range [frame: 4]",
		},
		{
			name: "Transcode",
			err:  NewTranscodeError("a", "b", ErrUnsupportedTranscoding),
			kind: ErrUnsupportedTranscoding,
			msg:  "transcode a -> b: dicom: unsupported transcoding",
		},
		{
			name: "Nested",
			err:  NewTranscodeError("a", "b", NewFrameError(1, Detail(ErrUnsupportedFragmentation, "3 fragments for 2 frames"))),
			kind: ErrUnsupportedFragmentation,
			msg:  "transcode a -> b: dicom: unsupported fragmentation: 3 fragments for 2 frames [frame: 1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.kind))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestEngineErrorMatchesBoth(t *testing.T) {
	cause := errors.New("bad marker")
	err := fmt.Errorf("frame: %w", NewEngineError("jpeg", "decode", cause))
	assert.True(t, Is(err, ErrEngine))
	assert.True(t, Is(err, cause))

	var ee *EngineError
	require.True(t, As(err, &ee))
	assert.Equal(t, "jpeg", ee.Family)
	assert.Equal(t, "decode", ee.Op)
}

func TestAsFrameError(t *testing.T) {
	err := NewSyntaxError("1.2.840.10008.1.2.5", NewFrameError(7, ErrMissingData))
	var fe *FrameError
	require.True(t, As(err, &fe))
	assert.Equal(t, 7, fe.Index)
}
