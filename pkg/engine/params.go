package engine

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SampleFactor selects JPEG chroma subsampling
type SampleFactor int

const (
	SampleFactorDefault SampleFactor = iota // backend default (4:4:4)
	SampleFactor444
	SampleFactor422
)

func (f SampleFactor) String() string {
	switch f {
	case SampleFactor444:
		return "444"
	case SampleFactor422:
		return "422"
	}
	return "default"
}

// ParseSampleFactor accepts "444", "422", "4:2:2" and friends, or "default"
func ParseSampleFactor(s string) (SampleFactor, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), ":", "") {
	case "", "default":
		return SampleFactorDefault, nil
	case "444":
		return SampleFactor444, nil
	case "422":
		return SampleFactor422, nil
	}
	return SampleFactorDefault, fmt.Errorf("unknown sample factor %q", s)
}

func (f SampleFactor) MarshalYAML() (any, error) {
	return f.String(), nil
}

func (f *SampleFactor) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseSampleFactor(n.Value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ProgressionOrder is a JPEG 2000 packet progression
type ProgressionOrder int

const (
	LRCP ProgressionOrder = iota
	RLCP
	RPCL
	PCRL
	CPRL
)

func (p ProgressionOrder) String() string {
	switch p {
	case LRCP:
		return "LRCP"
	case RLCP:
		return "RLCP"
	case RPCL:
		return "RPCL"
	case PCRL:
		return "PCRL"
	case CPRL:
		return "CPRL"
	}
	return "unknown"
}

// ParseProgressionOrder accepts a progression name such as "RPCL" or its index
func ParseProgressionOrder(s string) (ProgressionOrder, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i, err := strconv.Atoi(s); err == nil && i >= int(LRCP) && i <= int(CPRL) {
		return ProgressionOrder(i), nil
	}
	for p := LRCP; p <= CPRL; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return LRCP, fmt.Errorf("unknown progression order %q", s)
}

func (p ProgressionOrder) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *ProgressionOrder) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseProgressionOrder(n.Value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// EncodeParams are the family dependent encoder settings
type EncodeParams struct {
	Lossy             bool             `yaml:"lossy"`
	Quality           int              `yaml:"quality"`           // JPEG baseline, 1-100
	SmoothingFactor   int              `yaml:"smoothingFactor"`   // JPEG
	SampleFactor      SampleFactor     `yaml:"sampleFactor"`      // JPEG
	Predictor         int              `yaml:"predictor"`         // JPEG lossless, 1-7
	PointTransform    int              `yaml:"pointTransform"`    // JPEG lossless
	AllowedLossyError int              `yaml:"allowedLossyError"` // JPEG-LS NEAR
	ProgressionOrder  ProgressionOrder `yaml:"progressionOrder"`  // JPEG 2000
	Rate              int              `yaml:"rate"`              // JPEG 2000 compression ratio
	AllowMCT          bool             `yaml:"allowMct"`          // JPEG 2000 multi-component transform
}

// DefaultEncodeParams returns the settings used when a caller supplies none
func DefaultEncodeParams() EncodeParams {
	return EncodeParams{
		Lossy:             false,
		Quality:           90,
		SmoothingFactor:   0,
		SampleFactor:      SampleFactorDefault,
		Predictor:         1,
		PointTransform:    0,
		AllowedLossyError: 10,
		ProgressionOrder:  LRCP,
		Rate:              20,
		AllowMCT:          true,
	}
}

// DecodeParams are the decoder settings. Backends that convert colour
// relabel the returned context; the engine never does.
type DecodeParams struct {
	ConvertColorspaceToRGB bool `yaml:"convertColorspaceToRgb"`
}
