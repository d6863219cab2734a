package provision

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// errArchiveEscape is returned when an archive entry would resolve outside
// the extraction directory.
var errArchiveEscape = errors.New("archive entry escapes extraction directory")

// HTTPFetcher downloads release archives over HTTP and unpacks tar.gz
// streams without buffering them on disk.
type HTTPFetcher struct {
	// Client defaults to http.DefaultClient when nil.
	Client *http.Client
}

// FetchArchive implements [Fetcher].
func (f *HTTPFetcher) FetchArchive(ctx context.Context, url, dir string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download archive: unexpected status %s", resp.Status)
	}

	return untar(resp.Body, dir)
}

func untar(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := secureJoin(dir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, header.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := checkLinkTarget(dir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		default:
			// Other entry types (devices, fifos) have no business in a
			// runner release archive; skip them.
		}
	}
}

// checkLinkTarget rejects symlink entries whose target resolves outside the
// extraction directory. Relative link names are resolved against the link's
// own directory, the way the link will resolve once created.
func checkLinkTarget(dir, source, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(filepath.Dir(source), linkname)
	}
	if !strings.HasPrefix(filepath.Clean(resolved), filepath.Clean(dir)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: %s", errArchiveEscape, linkname)
	}
	return nil
}

func secureJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.Clean(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", errArchiveEscape, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// #nosec G304 - target is confined to the extraction directory above
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // release archives are bounded in size
		out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}
