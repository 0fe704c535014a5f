package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agpdl/agpdl/client"
	"github.com/agpdl/agpdl/cmd/internal/common"
	"github.com/agpdl/agpdl/internal/report"
)

var (
	outputDir   string
	maxWorkers  int
	overwrite   bool
	dryRun      bool
	httpTimeout int

	downloadCmd = cobra.Command{
		Use:   "download",
		Short: "Download matched audit reports into a year-organized tree",
		Example: `
  - Mirror everything into ./downloads:

    $ agpdl download

  - Re-fetch the 2024-2025 reports, 8 at a time:

    $ agpdl download --year 2024-2025 --max-workers 8 --overwrite`,
		Run: func(cmd *cobra.Command, args []string) {
			c, err := common.NewClient(time.Duration(httpTimeout) * time.Second)
			cobra.CheckErr(err)

			reports, err := selectedReports(context.Background(), c)
			cobra.CheckErr(err)
			if len(reports) == 0 {
				log.Println("no reports matched the given filters.")
				return
			}
			log.Printf("selected %v reports for processing", len(reports))

			if metadataPath != "" {
				cobra.CheckErr(writeMetadata(metadataPath, reports))
			}

			d := NewDownload(c, newDownloadDir(outputDir)).
				WithLogger(slog.Default()).
				WithProcsLimit(maxWorkers).
				WithOverwrite(overwrite)

			if dryRun {
				paths, err := d.DryRun(reports)
				cobra.CheckErr(err)
				for _, path := range paths {
					fmt.Println(path)
				}
				log.Printf("would download %v reports", len(paths))
				return
			}

			_, err = d.Download(context.Background(), reports)
			cobra.CheckErr(err)
			log.Printf("successfully downloaded %v reports", len(reports))
		},
	}
)

func init() {
	rootCmd.AddCommand(&downloadCmd)
	registerFilterFlags(&downloadCmd)
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "downloads",
		"destination directory for downloaded reports")
	downloadCmd.Flags().IntVar(&maxWorkers, "max-workers", defaultWorkers(),
		"number of concurrent downloads")
	downloadCmd.Flags().BoolVar(&overwrite, "overwrite", false,
		"re-download files even if they already exist")
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"skip actual downloads and just print which files would be fetched")
	downloadCmd.Flags().IntVar(&httpTimeout, "timeout", 60,
		"HTTP timeout in seconds for download requests")
	downloadCmd.Flags().StringVarP(&metadataPath, "metadata", "m", "",
		"also write report metadata as JSON to this file")
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

func NewDownload(client *client.Client, st Storage) *Download {
	return &Download{
		client:  client,
		storage: st,
		procs:   1,
	}
}

type Download struct {
	client  *client.Client
	storage Storage
	logger  *slog.Logger

	procs     int
	overwrite bool
}

type Storage interface {
	EnsureBase() error
	Exists(path, fname string) bool
	Save(path, fname string, r io.Reader) error
	Path(path, fname string) string
}

func (self *Download) WithProcsLimit(lim int) *Download {
	self.procs = lim
	return self
}

func (self *Download) WithOverwrite(overwrite bool) *Download {
	self.overwrite = overwrite
	return self
}

func (self *Download) WithLogger(l *slog.Logger) *Download {
	self.logger = l
	return self
}

func (self *Download) log(ctx context.Context) *slog.Logger {
	if l := ContextLogger(ctx, self.logger); l != nil {
		return l
	}
	return slog.Default()
}

// DryRun returns the target path of every report in input order, without
// touching the network. Only the output root itself is created.
func (self *Download) DryRun(reports []report.Report) ([]string, error) {
	if err := self.storage.EnsureBase(); err != nil {
		return nil, err
	}

	paths := make([]string, len(reports))
	for i := range reports {
		rep := &reports[i]
		paths[i] = self.storage.Path(rep.SubDir(), rep.Filename())
	}
	return paths, nil
}

// Download fetches all reports concurrently and returns the saved paths in
// completion order. The first failed download cancels the remaining work and
// is returned; files saved by already-completed workers stay on disk, so a
// re-run resumes from where it stopped via the existing-file check.
func (self *Download) Download(ctx context.Context, reports []report.Report,
) ([]string, error) {
	if self.procs < 1 {
		return nil, fmt.Errorf("max workers must be positive, got %v",
			self.procs)
	}

	if err := self.storage.EnsureBase(); err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.procs)

	var mu sync.Mutex
	paths := make([]string, 0, len(reports))

	for i := range reports {
		if ctx.Err() != nil {
			break
		}
		rep := &reports[i]
		l := self.log(ctx).With(slog.String("title", rep.Title))
		g.Go(func() error {
			path, err := self.downloadReport(ContextWithLogger(ctx, l), rep)
			if err != nil {
				l.Error("failed to download report", slog.Any("error", err))
				return fmt.Errorf("download %q: %w", rep.Title, err)
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return paths, fmt.Errorf("download %v reports: %w", len(reports), err)
	}
	return paths, nil
}

func (self *Download) downloadReport(ctx context.Context, rep *report.Report,
) (string, error) {
	subDir, fname := rep.SubDir(), rep.Filename()
	path := self.storage.Path(subDir, fname)

	if !self.overwrite && self.storage.Exists(subDir, fname) {
		self.log(ctx).Debug("skip existing file", slog.String("path", path))
		return path, nil
	}

	resp, err := self.client.GetFile(ctx, rep.DownloadURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	self.log(ctx).Debug("download",
		slog.String("url", rep.DownloadURL), slog.String("path", path))
	if err := self.storage.Save(subDir, fname, resp.Body); err != nil {
		return "", err
	}
	return path, nil
}

// --------------------------------------------------

func newDownloadDir(datadir string) *downloadDir {
	return &downloadDir{datadir: datadir}
}

type downloadDir struct {
	datadir string
}

func (self *downloadDir) EnsureBase() error {
	if err := os.MkdirAll(self.datadir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", self.datadir, err)
	}
	return nil
}

func (self *downloadDir) Path(path, fname string) string {
	return filepath.Join(self.datadir, path, fname)
}

func (self *downloadDir) Exists(path, fname string) bool {
	fi, err := os.Stat(self.Path(path, fname))
	return err == nil && fi.Mode().IsRegular()
}

func (self *downloadDir) Save(path, fname string, r io.Reader) error {
	if err := self.makePath(path); err != nil {
		return err
	}

	path = self.Path(path, fname)
	w, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed create %q: %w", path, err)
	}
	defer w.Close()

	_, err = io.Copy(w, r)
	if err != nil {
		return fmt.Errorf("failed write into %q: %w", path, err)
	}

	return nil
}

func (self *downloadDir) makePath(path string) error {
	dir, err := os.Stat(self.datadir)
	if err != nil {
		return fmt.Errorf("makePath %q: %w", self.datadir, err)
	} else if !dir.IsDir() {
		return fmt.Errorf("makePath: %q not a directory", self.datadir)
	}

	path = filepath.Join(self.datadir, path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", path, err)
	}

	return nil
}
