package cmd

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/frame"
)

// Info summarizes the pixel layout of a file
type Info struct {
	Path        string           `json:"path"`
	Syntax      transfer.Syntax  `json:"transferSyntax"`
	SyntaxName  string           `json:"transferSyntaxName"`
	Profile     transfer.Profile `json:"profile"`
	Modality    string           `json:"modality,omitempty"`
	Photometric string           `json:"photometricInterpretation"`
	Width       int              `json:"columns"`
	Height      int              `json:"rows"`
	Frames      int              `json:"frames"`
	BitsAlloc   int              `json:"bitsAllocated"`
	BitsStored  int              `json:"bitsStored"`
	Samples     int              `json:"samplesPerPixel"`
	Signed      bool             `json:"signed"`
	Planar      bool             `json:"planar"`
	Fragments   []int            `json:"fragments,omitempty"`
	Offsets     []uint32         `json:"offsets,omitempty"`
	PixelBytes  int              `json:"pixelBytes"`
	FrameRanges []FrameRange     `json:"frameRanges,omitempty"`
	Elements    []*dicom.Element `json:"elements,omitempty"`
	Dataset     *dicom.Dataset   `json:"dataset,omitempty"`
	view        *frame.View
}

// FrameRange is the sample range of a native grayscale frame
type FrameRange struct {
	Frame int `json:"frame"`
	Min   int `json:"min"`
	Max   int `json:"max"`
}

// NewInfoCmd prints geometry, syntax profile and fragment layout
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "describe the pixel data of a DICOM file",
		Long:  "Parses a DICOM file and prints its transfer syntax profile, image geometry and fragment layout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			dump, _ := cmd.Flags().GetBool("dump")
			ds, syntax, err := dicom.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}
			info := describe(args[0], ds, syntax, 3)
			names, _ := cmd.Flags().GetStringSlice("tag")
			if info.Elements, err = selectElements(ds, names); err != nil {
				return err
			}
			if dump {
				info.Dataset = ds
			}
			switch format {
			case "text":
				info.write(cmd.OutOrStdout())
				for _, e := range info.Elements {
					fmt.Fprintln(cmd.OutOrStdout(), e)
				}
				if dump {
					fmt.Fprintln(cmd.OutOrStdout(), ds.Dump())
				}
				return nil
			default:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "text", "output format (text|json)")
	pf.Bool("dump", false, "include every element")
	pf.StringSlice("tag", nil, "print the named elements, by keyword or (GGGG,EEEE)")
	return cmd
}

// selectElements resolves names to the elements present in ds
func selectElements(ds *dicom.Dataset, names []string) ([]*dicom.Element, error) {
	var out []*dicom.Element
	for _, name := range names {
		t, err := tag.Parse(name)
		if err != nil {
			return nil, err
		}
		e, ok := ds.Elements[t]
		if !ok {
			return nil, fmt.Errorf("%s not present", t)
		}
		out = append(out, e)
	}
	return out, nil
}

// describe gathers an Info, scanning the sample range of up to ranges native frames
func describe(path string, ds *dicom.Dataset, syntax transfer.Syntax, ranges int) *Info {
	v := frame.NewView(ds, syntax)
	info := &Info{
		Path:        path,
		Syntax:      syntax,
		SyntaxName:  syntax.Name(),
		Profile:     syntax.Profile(),
		Photometric: v.PhotometricInterpretation,
		Width:       v.Width,
		Height:      v.Height,
		Frames:      v.Frames,
		BitsAlloc:   v.BitsAllocated,
		BitsStored:  v.BitsStored,
		Samples:     v.SamplesPerPixel,
		Signed:      v.IsSigned(),
		Planar:      v.SamplesPerPixel > 1 && v.IsPlanar(),
		view:        v,
	}
	info.Modality, _ = ds.String(tag.Modality)
	if v.PixelData == nil {
		return info
	}
	info.PixelBytes = v.PixelData.Len()
	if v.PixelData.Encapsulated {
		for _, b := range v.PixelData.Buffers {
			info.Fragments = append(info.Fragments, len(b))
		}
		info.Offsets = v.PixelData.Offsets
		return info
	}
	if v.SamplesPerPixel != 1 || syntax.Profile().BigEndian {
		return info
	}
	for i := 0; i < min(ranges, v.Frames); i++ {
		buf, err := v.Buffer(i)
		if err != nil || len(buf) == 0 {
			break
		}
		info.FrameRanges = append(info.FrameRanges, sampleRange(i, buf, v.BitsAllocated, v.IsSigned()))
	}
	return info
}

func sampleRange(index int, buf []byte, bitsAllocated int, signed bool) FrameRange {
	sample := func(i int) int {
		if bitsAllocated == 16 {
			s := binary.LittleEndian.Uint16(buf[2*i:])
			if signed {
				return int(int16(s))
			}
			return int(s)
		}
		if signed {
			return int(int8(buf[i]))
		}
		return int(buf[i])
	}
	n := len(buf)
	if bitsAllocated == 16 {
		n /= 2
	}
	r := FrameRange{Frame: index}
	for i := 0; i < n; i++ {
		s := sample(i)
		if i == 0 || s < r.Min {
			r.Min = s
		}
		if i == 0 || s > r.Max {
			r.Max = s
		}
	}
	return r
}

func (info *Info) write(w io.Writer) {
	fmt.Fprintf(w, "File: %s\n", info.Path)
	if info.Modality != "" {
		fmt.Fprintf(w, "Modality: %s\n", info.Modality)
	}
	fmt.Fprintf(w, "Transfer Syntax: %s (%s)\n", info.Syntax, info.SyntaxName)
	fmt.Fprintf(w, "    Lossy: %t;  Encapsulated: %t;  Big Endian: %t\n",
		info.Profile.Lossy, info.Profile.Encapsulated, info.Profile.BigEndian)
	if info.view.PixelData == nil {
		fmt.Fprintln(w, "No pixel data")
		return
	}
	fmt.Fprintln(w, info.view.String())
	fmt.Fprintf(w, "    Samples: %d;  Planar: %t;  Bytes: %d\n", info.Samples, info.Planar, info.PixelBytes)
	if len(info.Fragments) > 0 {
		fmt.Fprintf(w, "Fragments: %d\n", len(info.Fragments))
		for i, n := range info.Fragments {
			fmt.Fprintf(w, "    [%d] %d bytes\n", i, n)
		}
	}
	if len(info.Offsets) > 0 {
		fmt.Fprintf(w, "BOT Offsets: %v\n", info.Offsets)
	}
	for _, r := range info.FrameRanges {
		fmt.Fprintf(w, "Frame %d range: min=%d, max=%d\n", r.Frame, r.Min, r.Max)
	}
}
