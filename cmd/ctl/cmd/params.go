package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
)

func addParamFlags(fs *pflag.FlagSet) {
	d := codec.DefaultParams()
	fs.String("params", "", "YAML file of encode parameters, overridden by explicit flags")
	fs.Bool("lossy", d.Lossy, "allow lossy coding where the family supports both")
	fs.Int("quality", d.Quality, "JPEG baseline quality (1-100)")
	fs.Int("smoothing", d.SmoothingFactor, "JPEG smoothing factor, only 0 is supported")
	fs.String("sample-factor", d.SampleFactor.String(), "JPEG chroma subsampling (default|444|422)")
	fs.Int("predictor", d.Predictor, "JPEG lossless predictor (1-7)")
	fs.Int("point-transform", d.PointTransform, "JPEG lossless point transform")
	fs.Int("near", d.AllowedLossyError, "JPEG-LS allowed lossy error (NEAR)")
	fs.String("progression", d.ProgressionOrder.String(), "JPEG 2000 progression order (LRCP|RLCP|RPCL|PCRL|CPRL)")
	fs.Int("rate", d.Rate, "JPEG 2000 lossy compression ratio")
	fs.Bool("allow-mct", d.AllowMCT, "JPEG 2000 multi-component transform")
	fs.Bool("to-rgb", d.ConvertColorspaceToRGB, "convert decoded color frames to RGB")
}

// loadParams starts from the defaults, applies the --params file and then
// any flag the user set explicitly
func loadParams(cmd *cobra.Command) (codec.Params, error) {
	p := codec.DefaultParams()
	fs := cmd.Flags()
	if path, _ := fs.GetString("params"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("read params: %w", err)
		}
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("parse params %s: %w", path, err)
		}
	}

	var err error
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("lossy", func() { p.Lossy, _ = fs.GetBool("lossy") })
	set("quality", func() { p.Quality, _ = fs.GetInt("quality") })
	set("smoothing", func() { p.SmoothingFactor, _ = fs.GetInt("smoothing") })
	set("predictor", func() { p.Predictor, _ = fs.GetInt("predictor") })
	set("point-transform", func() { p.PointTransform, _ = fs.GetInt("point-transform") })
	set("near", func() { p.AllowedLossyError, _ = fs.GetInt("near") })
	set("rate", func() { p.Rate, _ = fs.GetInt("rate") })
	set("allow-mct", func() { p.AllowMCT, _ = fs.GetBool("allow-mct") })
	set("to-rgb", func() { p.ConvertColorspaceToRGB, _ = fs.GetBool("to-rgb") })
	set("sample-factor", func() {
		v, _ := fs.GetString("sample-factor")
		p.SampleFactor, err = engine.ParseSampleFactor(v)
	})
	if err != nil {
		return p, err
	}
	set("progression", func() {
		v, _ := fs.GetString("progression")
		p.ProgressionOrder, err = engine.ParseProgressionOrder(v)
	})
	return p, err
}
