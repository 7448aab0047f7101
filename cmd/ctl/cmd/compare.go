package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/engine"
	"github.com/jpfielding/dcmtx.go/pkg/transcode"
)

// NewCompareCmd reports compression ratio and round trip error per syntax
func NewCompareCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file>",
		Short: "compare transfer syntaxes on one file",
		Long: "Encodes the file in each syntax named by --to (every encapsulated syntax by default), " +
			"decodes it again and reports the compression ratio and sample error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetStringSlice("to")
			var targets []transfer.Syntax
			for _, n := range names {
				c, err := codec.ByName(n)
				if err != nil {
					return err
				}
				targets = append(targets, c.Syntax())
			}
			if len(targets) == 0 {
				for _, s := range transfer.Supported() {
					if s.IsEncapsulated() {
						targets = append(targets, s)
					}
				}
			}
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			ds, syntax, err := dicom.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}

			eng := engine.New(engine.WithLogger(slog.Default()))
			if err := eng.Initialize(ctx); err != nil {
				return err
			}
			defer eng.Release()
			results, err := transcode.New(eng, transcode.WithLogger(slog.Default())).
				Compare(ctx, ds, syntax, targets, params)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringSlice("to", nil, "codec names or UIDs to compare")
	addParamFlags(pf)
	return cmd
}
