package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/image/tiff"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
	"github.com/jpfielding/dcmtx.go/pkg/frame"
	"github.com/jpfielding/dcmtx.go/pkg/pixel"
	"github.com/jpfielding/dcmtx.go/pkg/transcode"
)

// NewFrameCmd extracts a single frame, raw or decoded to TIFF
func NewFrameCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame <file>",
		Short: "extract one frame from a DICOM file",
		Long: "Writes the stored bytes of one frame. With --tiff the file is decoded to native little endian " +
			"first and the frame is written as a TIFF image.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _ := cmd.Flags().GetInt("index")
			out, _ := cmd.Flags().GetString("out")
			asTIFF, _ := cmd.Flags().GetBool("tiff")

			ds, syntax, err := dicom.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}
			if asTIFF && syntax != transcode.Intermediate {
				eng := engine.New(engine.WithLogger(slog.Default()))
				if err := eng.Initialize(ctx); err != nil {
					return err
				}
				defer eng.Release()
				params := codec.DefaultParams()
				params.ConvertColorspaceToRGB = true
				if syntax, err = transcode.New(eng).Transcode(ctx, ds, syntax, transcode.Intermediate, params); err != nil {
					return err
				}
			}

			v := frame.NewView(ds, syntax)
			buf, err := v.Buffer(index)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("frame_%d.bin", index)
				if asTIFF {
					out = fmt.Sprintf("frame_%d.tiff", index)
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if !asTIFF {
				_, err = f.Write(buf)
			} else {
				var img image.Image
				if img, err = frameImage(v, buf); err == nil {
					err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
				}
			}
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "wrote frame", slog.Int("frame", index), slog.Int("bytes", len(buf)), slog.String("out", out))
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.IntP("index", "i", 0, "frame index")
	pf.StringP("out", "o", "", "output path")
	pf.Bool("tiff", false, "decode and write the frame as TIFF")
	return cmd
}

// frameImage wraps a native little endian frame as an image. Signed samples
// are offset into the unsigned range.
func frameImage(v *frame.View, buf []byte) (image.Image, error) {
	rect := image.Rect(0, 0, v.Width, v.Height)
	n := v.Width * v.Height
	if len(buf) < n*v.SamplesPerPixel*v.BytesAllocated() {
		return nil, fmt.Errorf("frame holds %d bytes, want %d", len(buf), n*v.SamplesPerPixel*v.BytesAllocated())
	}
	switch {
	case v.SamplesPerPixel == 1 && v.BitsAllocated == 8:
		img := image.NewGray(rect)
		copy(img.Pix, buf)
		if v.IsSigned() {
			for i := range img.Pix {
				img.Pix[i] ^= 0x80
			}
		}
		return img, nil
	case v.SamplesPerPixel == 1 && v.BitsAllocated == 16:
		img := image.NewGray16(rect)
		shift := 16 - min(v.BitsStored, 16)
		for i := 0; i < n; i++ {
			s := binary.LittleEndian.Uint16(buf[2*i:])
			if v.IsSigned() {
				s = uint16(int16(s<<shift)>>shift) ^ 0x8000
			} else {
				s <<= shift
			}
			binary.BigEndian.PutUint16(img.Pix[2*i:], s)
		}
		return img, nil
	case v.SamplesPerPixel == 3 && v.BitsAllocated == 8:
		rgb := buf[:3*n]
		if v.IsPlanar() {
			var err error
			if rgb, err = pixel.ChangePlanarConfiguration(rgb, 8, 3, pixel.Planar); err != nil {
				return nil, err
			}
		}
		if v.PhotometricInterpretation == pixel.YBRFull {
			rgb = pixel.YBRFullToRGB(rgb)
		}
		img := image.NewRGBA(rect)
		for i := 0; i < n; i++ {
			copy(img.Pix[4*i:], rgb[3*i:3*i+3])
			img.Pix[4*i+3] = 0xff
		}
		return img, nil
	}
	return nil, fmt.Errorf("no image mapping for %d samples of %d bits", v.SamplesPerPixel, v.BitsAllocated)
}
