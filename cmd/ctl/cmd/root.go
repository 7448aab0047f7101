package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmtx.go/pkg/logging"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	var logFile io.Closer
	cmd := &cobra.Command{
		Use:           "dcmtx",
		Short:         "a CLI to transcode DICOM pixel data between transfer syntaxes",
		Long:          "Transcodes, inspects and extracts frames from DICOM Part 10 files.",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			asJSON, _ := cmd.Flags().GetBool("log-json")
			path, _ := cmd.Flags().GetString("log-file")

			var level slog.Level
			badLevel := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if badLevel != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = os.Stderr
			if path != "" {
				fw := logging.FileWriter(path, 50, 3)
				logFile = fw
				w = io.MultiWriter(os.Stderr, fw)
			}
			slog.SetDefault(logging.Logger(w, asJSON, level))
			if badLevel != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", badLevel)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewTranscodeCmd(ctx),
		NewFrameCmd(ctx),
		NewInfoCmd(ctx),
		NewSyntaxesCmd(ctx),
		NewCompareCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.Bool("log-json", false, "emit logs as JSON")
	pf.String("log-file", "", "also write logs to this file, rotated")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
