package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agpdl/agpdl/client"
	"github.com/agpdl/agpdl/internal/report"
)

func testDownloadReports() []report.Report {
	return []report.Report{
		{Serial: 1, Title: "First Report Title", YearCode: "y2",
			YearLabel: "2010-2011", DownloadURL: "/files/report-1.pdf"},
		{Serial: 2, Title: "Second Report", YearCode: "y1",
			YearLabel: "2009 downwards", DownloadURL: "/files/report-2.pdf"},
		{Serial: 3, Title: "Unclassified Report",
			DownloadURL: "/files/report-3.pdf"},
	}
}

func fileServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, err := w.Write([]byte("%PDF- " + r.URL.Path))
			assert.NoError(t, err)
		}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srvURL string) *client.Client {
	return client.New().WithBaseURL(srvURL)
}

func TestDownload_DryRun(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()

	var hits atomic.Int32
	srv := fileServer(t, &hits)

	d := NewDownload(testClient(srv.URL), newDownloadDir(datadir)).
		WithProcsLimit(4)
	paths, err := d.DryRun(reports)
	require.NoError(t, err)

	want := []string{
		filepath.Join(datadir, "2010-2011", "0001_First_Report_Title.pdf"),
		filepath.Join(datadir, "2009_downwards", "0002_Second_Report.pdf"),
		filepath.Join(datadir, "0003_Unclassified_Report.pdf"),
	}
	assert.Equal(t, want, paths, "dry-run must preserve input order")
	assert.Zero(t, hits.Load(), "dry-run must not touch the network")

	// The output root exists, but nothing was written below it.
	entries, err := os.ReadDir(datadir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_Download(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()

	var hits atomic.Int32
	srv := fileServer(t, &hits)

	d := NewDownload(testClient(srv.URL), newDownloadDir(datadir)).
		WithProcsLimit(2)
	paths, err := d.Download(context.Background(), reports)
	require.NoError(t, err)
	assert.Equal(t, int32(len(reports)), hits.Load())

	want, err := d.DryRun(reports)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, paths, "live mode promises no order")

	for i := range reports {
		data, err := os.ReadFile(want[i])
		require.NoError(t, err)
		assert.Equal(t, "%PDF- "+reports[i].DownloadURL, string(data))
	}
}

func TestDownload_rejectsNonPositiveWorkers(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()[:1]

	var hits atomic.Int32
	srv := fileServer(t, &hits)

	for _, procs := range []int{0, -1} {
		d := NewDownload(testClient(srv.URL), newDownloadDir(datadir)).
			WithProcsLimit(procs)
		_, err := d.Download(context.Background(), reports)
		require.Error(t, err)
		assert.ErrorContains(t, err, "max workers")
	}
	assert.Zero(t, hits.Load())
}

func TestDownload_skipsExistingFile(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()[:1]

	existing := reports[0].TargetPath(datadir)
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old content"), 0o644))

	var hits atomic.Int32
	srv := fileServer(t, &hits)

	d := NewDownload(testClient(srv.URL), newDownloadDir(datadir))
	paths, err := d.Download(context.Background(), reports)
	require.NoError(t, err)
	assert.Equal(t, []string{existing}, paths)
	assert.Zero(t, hits.Load(), "existing file must not be re-fetched")

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(data))
}

func TestDownload_overwriteRefetches(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()[:1]

	existing := reports[0].TargetPath(datadir)
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old content"), 0o644))

	var hits atomic.Int32
	srv := fileServer(t, &hits)

	d := NewDownload(testClient(srv.URL), newDownloadDir(datadir)).
		WithOverwrite(true)
	_, err := d.Download(context.Background(), reports)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "%PDF- "+reports[0].DownloadURL, string(data))
}

func TestDownload_failFast(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "downloads")
	reports := testDownloadReports()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == reports[1].DownloadURL {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, err := w.Write([]byte("%PDF-"))
			assert.NoError(t, err)
		}))
	t.Cleanup(srv.Close)

	d := NewDownload(testClient(srv.URL), newDownloadDir(datadir))
	_, err := d.Download(context.Background(), reports)
	require.ErrorIs(t, err, client.ErrUnexpectedStatus)
	assert.ErrorContains(t, err, reports[1].Title)
}

func TestDownloadDir_Save(t *testing.T) {
	datadir := t.TempDir()

	d := newDownloadDir(datadir)
	buf := bytes.NewReader([]byte("foobar"))
	require.NoError(t, d.Save("2010-2011", "foobar.pdf", buf))

	data, err := os.ReadFile(filepath.Join(datadir, "2010-2011", "foobar.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("foobar"), data)

	require.Error(t, d.Save("2010-2011/foobar.pdf", "foobar.pdf", buf))

	wantErr := errors.New("test error")
	readErr := errReader{err: wantErr}
	require.ErrorIs(t, d.Save("2010-2011", "foobar.pdf", &readErr), wantErr)
}

type errReader struct {
	err error
}

func (self *errReader) Read(p []byte) (n int, err error) {
	return 0, self.err
}

func TestDownloadDir_Exists(t *testing.T) {
	datadir := t.TempDir()
	d := newDownloadDir(datadir)

	assert.False(t, d.Exists("sub", "file.pdf"))

	require.NoError(t, d.Save("sub", "file.pdf",
		bytes.NewReader([]byte("x"))))
	assert.True(t, d.Exists("sub", "file.pdf"))
	assert.False(t, d.Exists("", "sub"), "directories are not files")
}

func TestDownloadDir_EnsureBase(t *testing.T) {
	datadir := filepath.Join(t.TempDir(), "a", "b", "downloads")
	d := newDownloadDir(datadir)

	require.NoError(t, d.EnsureBase())
	fi, err := os.Stat(datadir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// Idempotent.
	require.NoError(t, d.EnsureBase())
}

func TestDownloadDir_makePath(t *testing.T) {
	datadir := t.TempDir()
	d := newDownloadDir(datadir)
	require.NoError(t, d.makePath("2010-2011"))

	fi, err := os.Stat(filepath.Join(datadir, "2010-2011"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	require.NoError(t, d.makePath("2010-2011"))

	d.datadir = filepath.Join(datadir, "missing")
	require.Error(t, d.makePath("2010-2011"))
}
