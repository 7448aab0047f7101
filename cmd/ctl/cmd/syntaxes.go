package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
)

// NewSyntaxesCmd lists the supported transfer syntaxes and their codec names
func NewSyntaxesCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "syntaxes",
		Short: "list supported transfer syntaxes",
		Long:  "Lists every supported transfer syntax with its codec name and profile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tUID\tLOSSY\tENCAPSULATED\tDESCRIPTION")
			for _, s := range transfer.Supported() {
				c, err := codec.For(s)
				if err != nil {
					return err
				}
				p := s.Profile()
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", c.Name(), s, p.Lossy, p.Encapsulated, s.Name())
			}
			return w.Flush()
		},
	}
}
