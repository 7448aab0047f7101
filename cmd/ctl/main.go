package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/jpfielding/dcmtx.go/cmd/ctl/cmd"
	"github.com/jpfielding/dcmtx.go/pkg/logging"
)

var (
	GitSHA string = "NA"
)

func main() {
	// register sigterm for graceful shutdown
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc() // removes the signal handler so a second ctrl-c kills the process
		<-ctx.Done()
	}()
	slog.SetDefault(logging.Logger(os.Stderr, false, slog.LevelInfo))
	ctx = logging.AppendCtx(ctx,
		slog.Group("dcmtx",
			slog.String("name", "ctl"),
			slog.String("git", GitSHA),
		))
	if err := cmd.NewRoot(ctx, GitSHA).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
