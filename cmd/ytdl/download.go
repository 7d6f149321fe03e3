package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ytdl-ui/ytdl/internal/batch"
	"github.com/ytdl-ui/ytdl/internal/log"
	"github.com/ytdl-ui/ytdl/internal/model"
	"github.com/ytdl-ui/ytdl/internal/service"
)

var (
	errNoURLs         = errors.New("nothing to download: pass an url or list files in the config")
	errDownloadFailed = errors.New("download failed")
)

type downloadFlags struct {
	dir      string
	format   string
	parallel int
	progress bool
}

func (c *cli) downloadCmd() *cobra.Command {
	var flags downloadFlags
	cmd := &cobra.Command{
		Use:   "download [url...]",
		Short: "download the given urls and the files listed in the config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.download(cmd, args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.dir, "dir", "", "target directory, overrides download_dir from the config")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "yt-dlp format selector, overrides ytdlp.format from the config")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 0, "number of concurrent downloads")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "draw a progress bar when downloading a single url")
	return cmd
}

func (c *cli) download(cmd *cobra.Command, args []string, flags downloadFlags) error {
	ctx := log.ContextAttrs(cmd.Context(), slog.Group("ytdl",
		slog.String("cmd", "download"),
	))

	urls := mergeURLs(args, c.config.Files)
	if len(urls) == 0 {
		return errNoURLs
	}

	opts, err := c.options(flags.dir)
	if err != nil {
		return err
	}

	jobs := make([]*service.Supervisor, 0, len(urls))
	for _, url := range urls {
		job, err := service.NewSupervisor(url, opts)
		if err != nil {
			return err
		}
		job.AddListener(newLogListener(ctx, job))
		jobs = append(jobs, job)
	}

	var g errgroup.Group
	if flags.progress && len(jobs) == 1 {
		d := service.NewDispatcher(newBarListener(c.stderr, jobs[0].URL()))
		jobs[0].AddListener(d)
		// the job always completes, so Run always returns
		g.Go(func() error {
			return d.Run(context.WithoutCancel(ctx))
		})
	}

	format := firstNonEmpty(flags.format, c.config.Ytdlp.Format)
	parallel := firstPositive(flags.parallel, c.config.Service.Parallel, model.DefaultParallel)

	var failed []string
	for res := range batch.Run(ctx, parallel, jobs, format) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-9s %4d %6.2f%% %s\n", res.State, res.Status, res.Record.Percent, res.URL)
		if !res.Success() {
			failed = append(failed, res.URL)
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", errDownloadFailed, strings.Join(failed, ", "))
	}
	return nil
}

func (c *cli) options(dir string) (service.Options, error) {
	timeout, err := c.config.KillTimeout()
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		OutputDir:   firstNonEmpty(dir, c.config.DownloadDir),
		Binary:      c.config.Ytdlp.Binary,
		Retries:     c.config.Ytdlp.Retries,
		KillTimeout: timeout,
	}, nil
}

// mergeURLs returns the command line urls followed by the configured ones,
// each url once.
func mergeURLs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var ret []string
	for _, list := range lists {
		for _, url := range list {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			ret = append(ret, url)
		}
	}
	return ret
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
