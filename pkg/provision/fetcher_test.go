package provision_test

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/ci-driver/pkg/provision"
)

type tarEntry struct {
	name     string
	content  string
	dir      bool
	linkname string
}

func buildArchive(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if e.dir {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: e.name, Typeflag: tar.TypeDir, Mode: 0o755,
			}))
			continue
		}
		if e.linkname != "" {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: e.name, Typeflag: tar.TypeSymlink, Linkname: e.linkname, Mode: 0o777,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: e.name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(e.content)),
		}))
		_, err := tw.Write([]byte(e.content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, status int, body []byte) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestHTTPFetcher_FetchArchive(t *testing.T) {
	t.Run("unpacks files and directories", func(t *testing.T) {
		archive := buildArchive(t, []tarEntry{
			{name: "bin/", dir: true},
			{name: "bin/Runner.Listener", content: "binary"},
			{name: "config.sh", content: "#!/bin/bash\n"},
		})
		url := serveArchive(t, http.StatusOK, archive)

		dir := t.TempDir()
		fetcher := &provision.HTTPFetcher{}
		require.NoError(t, fetcher.FetchArchive(context.Background(), url, dir))

		content, err := os.ReadFile(filepath.Join(dir, "config.sh"))
		require.NoError(t, err)
		assert.Equal(t, "#!/bin/bash\n", string(content))

		_, err = os.Stat(filepath.Join(dir, "bin", "Runner.Listener"))
		require.NoError(t, err)
	})

	t.Run("rejects entries escaping the extraction directory", func(t *testing.T) {
		archive := buildArchive(t, []tarEntry{
			{name: "../evil.sh", content: "#!/bin/bash\n"},
		})
		url := serveArchive(t, http.StatusOK, archive)

		dir := t.TempDir()
		fetcher := &provision.HTTPFetcher{}
		err := fetcher.FetchArchive(context.Background(), url, dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes extraction directory")

		_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "evil.sh"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unpacks symlinks pointing inside the extraction directory", func(t *testing.T) {
		archive := buildArchive(t, []tarEntry{
			{name: "bin/", dir: true},
			{name: "bin/Runner.Listener", content: "binary"},
			{name: "runner", linkname: "bin/Runner.Listener"},
		})
		url := serveArchive(t, http.StatusOK, archive)

		dir := t.TempDir()
		fetcher := &provision.HTTPFetcher{}
		require.NoError(t, fetcher.FetchArchive(context.Background(), url, dir))

		linkname, err := os.Readlink(filepath.Join(dir, "runner"))
		require.NoError(t, err)
		assert.Equal(t, "bin/Runner.Listener", linkname)
	})

	t.Run("rejects symlinks escaping the extraction directory", func(t *testing.T) {
		for name, linkname := range map[string]string{
			"relative": "../../etc/passwd",
			"absolute": "/etc/passwd",
		} {
			t.Run(name, func(t *testing.T) {
				archive := buildArchive(t, []tarEntry{
					{name: "escape", linkname: linkname},
				})
				url := serveArchive(t, http.StatusOK, archive)

				dir := t.TempDir()
				fetcher := &provision.HTTPFetcher{}
				err := fetcher.FetchArchive(context.Background(), url, dir)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "escapes extraction directory")

				_, statErr := os.Lstat(filepath.Join(dir, "escape"))
				assert.True(t, os.IsNotExist(statErr))
			})
		}
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		url := serveArchive(t, http.StatusNotFound, nil)

		fetcher := &provision.HTTPFetcher{}
		err := fetcher.FetchArchive(context.Background(), url, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})

	t.Run("garbage payload fails", func(t *testing.T) {
		url := serveArchive(t, http.StatusOK, []byte("not a gzip stream"))

		fetcher := &provision.HTTPFetcher{}
		err := fetcher.FetchArchive(context.Background(), url, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gzip")
	})
}
