package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jpfielding/dcmtx.go/pkg/codec"
	"github.com/jpfielding/dcmtx.go/pkg/dicom"
	"github.com/jpfielding/dcmtx.go/pkg/dicom/transfer"
	"github.com/jpfielding/dcmtx.go/pkg/logging"
)

// Job names one file to transcode
type Job struct {
	In  string
	Out string
}

// Result reports the outcome of one Job
type Result struct {
	Job
	From    transfer.Syntax
	Written int64
	Err     error
}

// TranscodeFile reads a Part 10 file, transcodes it to syntax to and writes
// the result to out
func (t *Transcoder) TranscodeFile(ctx context.Context, in, out string, to transfer.Syntax, params codec.Params, opts dicom.WriteOptions) (Result, error) {
	res := Result{Job: Job{In: in, Out: out}}
	ds, from, err := dicom.ReadFile(in)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", in, err)
		return res, res.Err
	}
	res.From = from
	if _, err := t.Transcode(ctx, ds, from, to, params); err != nil {
		res.Err = fmt.Errorf("%s: %w", in, err)
		return res, res.Err
	}
	n, err := dicom.WriteFile(out, ds, to, opts)
	if err != nil {
		res.Err = fmt.Errorf("write %s: %w", out, err)
		return res, res.Err
	}
	res.Written = n
	return res, nil
}

// TranscodeFiles runs jobs on up to workers goroutines. Every job is
// attempted; the returned error joins the individual failures.
func (t *Transcoder) TranscodeFiles(ctx context.Context, jobs []Job, to transfer.Syntax, params codec.Params, opts dicom.WriteOptions, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(jobs))
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Job: job, Err: err}
				return err
			}
			jctx := logging.AppendCtx(gctx, slog.String("file", job.In))
			res, err := t.TranscodeFile(jctx, job.In, job.Out, to, params, opts)
			results[i] = res
			if err != nil {
				t.logger.WarnContext(jctx, "transcode failed", slog.Any("error", err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			t.logger.InfoContext(jctx, "transcoded file",
				slog.String("from", res.From.Name()),
				slog.String("to", to.Name()),
				slog.Int64("bytes", res.Written))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}
