package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
	"github.com/jpfielding/dcmtx.go/pkg/transcode"
)

// NewTranscodeCmd converts one or more Part 10 files to another transfer syntax
func NewTranscodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcode [files...]",
		Short: "transcode DICOM files to another transfer syntax",
		Long: "Transcodes each file to the syntax named by --to. With one input --out names the output file, " +
			"with several it names a directory. Without --out the codec name is added before the extension.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			c, err := codec.ByName(to)
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(codec.Names(), ", "))
			}
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			jobs, err := transcodeJobs(args, out, c.Name())
			if err != nil {
				return err
			}
			workers, _ := cmd.Flags().GetInt("workers")
			fragment, _ := cmd.Flags().GetBool("fragment-multiframe")
			trace, _ := cmd.Flags().GetBool("trace")

			eng := engine.New(engine.WithLogger(slog.Default()), engine.WithTrace(trace))
			if err := eng.Initialize(ctx); err != nil {
				return err
			}
			defer eng.Release()

			tc := transcode.New(eng, transcode.WithLogger(slog.Default()))
			results, err := tc.TranscodeFiles(ctx, jobs, c.Syntax(), params,
				dicom.WriteOptions{FragmentMultiframe: fragment}, workers)
			for _, r := range results {
				if r.Err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s -> %s, %d bytes)\n",
						r.In, r.Out, r.From.Name(), c.Syntax().Name(), r.Written)
				}
			}
			return err
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("to", "t", "explicit-le", "target codec name or transfer syntax UID")
	pf.StringP("out", "o", "", "output file, or directory for several inputs")
	pf.IntP("workers", "w", 4, "files transcoded concurrently")
	pf.Bool("fragment-multiframe", false, "split encapsulated frames into 20KiB fragments")
	pf.Bool("trace", false, "log every frame passed to the codec engine")
	addParamFlags(pf)
	return cmd
}

func transcodeJobs(inputs []string, out, name string) ([]transcode.Job, error) {
	if len(inputs) == 1 && out != "" {
		if fi, err := os.Stat(out); err != nil || !fi.IsDir() {
			return []transcode.Job{{In: inputs[0], Out: out}}, nil
		}
	}
	if out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return nil, err
		}
	}
	jobs := make([]transcode.Job, 0, len(inputs))
	for _, in := range inputs {
		ext := filepath.Ext(in)
		dst := strings.TrimSuffix(in, ext) + "." + name + ext
		if out != "" {
			dst = filepath.Join(out, filepath.Base(in))
		}
		jobs = append(jobs, transcode.Job{In: in, Out: dst})
	}
	return jobs, nil
}
