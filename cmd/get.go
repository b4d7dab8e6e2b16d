package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/control"
	resumerhttp "github.com/tanq16/resumer/internal/downloaders/http"
	"github.com/tanq16/resumer/internal/events"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/utils"
)

func newGetCmd() *cobra.Command {
	var outputPath string
	var headers []string
	var noResume bool
	var jsonEvents bool

	cmd := &cobra.Command{
		Use:   "get [URL] [--output OUTPUT_PATH]",
		Short: "Download a file over HTTP/HTTPS, resuming any partial file at the output path",
		Long: `Download a file over HTTP/HTTPS.

Ctrl-C (SIGINT) pauses the download and keeps the partial file; running the
same command again resumes it. SIGTERM aborts and removes the partial file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if outputPath == "" {
				outputPath = utils.OutputPathFromURL(url)
			}
			pairs, err := utils.ParseHeaderArgs(headers)
			if err != nil {
				return err
			}
			if noResume {
				if err := utils.Clean(outputPath); err != nil {
					return fmt.Errorf("error removing existing file: %w", err)
				}
			} else if size := utils.LocalSize(outputPath); size > 0 {
				log.Debug().Str("op", "cmd/get").Msgf("Found %d bytes at %s, resuming", size, outputPath)
				pairs = append(pairs, utils.RangeHeader(size))
			}
			return runGet(cmd.Context(), cmd.OutOrStdout(), utils.DownloadConfig{
				URL:        url,
				OutputPath: outputPath,
				Headers:    pairs,
			}, jsonEvents)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (inferred from the URL if not provided)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	cmd.Flags().BoolVar(&noResume, "no-resume", false, "Discard any partial file and start from zero")
	cmd.Flags().BoolVar(&jsonEvents, "json", false, "Print download events as JSON lines instead of the progress display")
	return cmd
}

func runGet(ctx context.Context, w io.Writer, job utils.DownloadConfig, jsonEvents bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var sink events.Sink
	var display *output.Manager
	if jsonEvents {
		sink = events.NewJSONSink(w)
	} else {
		display = output.NewManagerWithWriter(w)
		sink = display
		display.StartDisplay()
	}

	store := control.NewStore()
	opts := resumerhttp.DefaultOptions()
	opts.HTTPClientConfig = globalConfig.HTTPClientConfig()
	opts.Signals = store
	opts.Sink = events.Multi(sink, events.NewLogSink(log.Logger))
	opts.ProgressInterval = globalConfig.ProgressInterval
	downloader := resumerhttp.NewDownloader(opts)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGTERM {
					downloader.RequestAbort(job.URL)
				} else {
					downloader.RequestPause(job.URL)
				}
			case <-done:
				return
			}
		}
	}()

	res, err := downloader.DownloadWithRetry(ctx, job, globalConfig.Retries, globalConfig.RetryBackoff)
	if display != nil {
		if err != nil {
			display.ReportError(job.URL, err)
		}
		display.StopDisplay()
		display.ShowSummary()
	}
	if err != nil {
		return err
	}
	log.Debug().Str("op", "cmd/get").Msgf("Session %s finished %s with %d/%d bytes", res.SessionID, res.State, res.Downloaded, res.Total)
	return nil
}
