package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/mindease/bootstrap"
	"github.com/kbukum/mindease/journal"
)

type transcribeOptions struct {
	user        string
	concurrency int
}

func newTranscribeCmd() *cobra.Command {
	opts := transcribeOptions{}
	cmd := &cobra.Command{
		Use:   "transcribe FILE...",
		Short: "Transcribe audio files through the voice journal",
		Long: `Captures each file as a voice journal recording, submits them
concurrently and waits for all of them. Transcripts are printed in argument
order once every recording has finished. The exit status is non-zero if any
recording fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(bootstrap.WithLogger(cliLogger()), bootstrap.WithSummaryOutput(io.Discard))
			if err != nil {
				return err
			}
			rt, err := registerRuntime(app, true)
			if err != nil {
				return err
			}
			ctrl := rt.newController()
			app.OnStop(func(context.Context) error { ctrl.Close(); return nil })
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return transcribeFiles(ctx, ctrl, args, opts, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&opts.user, "user", "u", "cli", "user id owning the recordings")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "recordings in flight at once")
	return cmd
}

type transcribeResult struct {
	file string
	rec  journal.Recording
	err  error
}

// transcribeFiles captures, submits and awaits every file. Results print in
// argument order once all are done.
func transcribeFiles(ctx context.Context, ctrl *journal.Controller, files []string, opts transcribeOptions, out io.Writer) error {
	results := make([]transcribeResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.concurrency))

	for i, file := range files {
		results[i].file = file
		g.Go(func() error {
			rec, err := transcribeFile(gctx, ctrl, file, opts.user)
			results[i].rec, results[i].err = rec, err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s: error: %v\n", r.file, r.err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", r.file, r.rec.Text())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(files))
	}
	return nil
}

func transcribeFile(ctx context.Context, ctrl *journal.Controller, file, user string) (journal.Recording, error) {
	audio, err := os.ReadFile(file)
	if err != nil {
		return journal.Recording{}, err
	}
	var capOpts []journal.CaptureOption
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		capOpts = append(capOpts, journal.WithContentType(ct))
	}
	rec, err := ctrl.Capture(user, audio, capOpts...)
	if err != nil {
		return journal.Recording{}, err
	}
	defer func() { _ = ctrl.Delete(rec.ID) }()

	if err := ctrl.Submit(ctx, rec.ID); err != nil {
		return rec, err
	}
	return ctrl.Await(ctx, rec.ID)
}
