// Package provision handles acquisition of the self-hosted runner binary:
// locating the matching release archive for the current platform, downloading
// and unpacking it, and normalizing file permissions.
//
// Provisioning is idempotent on the configuration marker file: when the
// marker is present the whole step is skipped, regardless of version drift.
// Staleness is accepted, not detected; the fast path must stay cheap and
// non-networked so restarts after a crash reuse the unpacked binary.
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// markerFile is written into the workdir by the runner's configuration
	// step. Its presence means the runner is provisioned and registered.
	markerFile = ".runner"

	// releaseURLFormat builds the download URL for a runner release archive.
	releaseURLFormat = "https://github.com/actions/runner/releases/download/v%s/actions-runner-%s-%s-%s.tar.gz"

	dirMode = os.FileMode(0o755)
)

// ErrUnsupportedPlatform is returned when no runner archive exists for the
// current OS/architecture combination.
var ErrUnsupportedPlatform = errors.New("no runner release for this platform")

// Error wraps any failure during runner binary acquisition. Provisioning is
// all-or-nothing: a failed download or extraction never leaves a usable
// marker, so the next attempt starts fresh.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("runner provisioning failed during %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher downloads an archive and unpacks it into a directory. The download
// and extraction mechanics are a collaborator concern; [HTTPFetcher] is the
// default implementation.
type Fetcher interface {
	FetchArchive(ctx context.Context, url, dir string) error
}

// ReleaseResolver reports the latest published runner version tag.
type ReleaseResolver interface {
	LatestRunnerVersion(ctx context.Context) (string, error)
}

// Configured reports whether the workdir holds a configured runner.
func Configured(workdir string) bool {
	_, err := os.Stat(filepath.Join(workdir, markerFile))
	return err == nil
}

// Ensure provisions the runner binary into workdir. If the configuration
// marker already exists nothing happens, not even the release lookup.
func Ensure(ctx context.Context, workdir string, resolver ReleaseResolver, fetcher Fetcher) error {
	if Configured(workdir) {
		return nil
	}

	archiveURL, err := archiveURLForPlatform(ctx, resolver)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(workdir, dirMode); err != nil {
		return &Error{Op: "workdir creation", Err: err}
	}

	if err := fetcher.FetchArchive(ctx, archiveURL, workdir); err != nil {
		return &Error{Op: "download and extraction", Err: err}
	}

	if err := normalizePermissions(workdir); err != nil {
		return &Error{Op: "permission normalization", Err: err}
	}

	return nil
}

func archiveURLForPlatform(ctx context.Context, resolver ReleaseResolver) (string, error) {
	osName, arch, err := platformNames(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", &Error{Op: "platform detection", Err: err}
	}

	version, err := resolver.LatestRunnerVersion(ctx)
	if err != nil {
		return "", &Error{Op: "release lookup", Err: err}
	}
	version = strings.TrimPrefix(version, "v")

	return fmt.Sprintf(releaseURLFormat, version, osName, arch, version), nil
}

// platformNames maps Go platform identifiers to the names used by the
// upstream runner release archives.
func platformNames(goos, goarch string) (string, string, error) {
	var osName string
	switch goos {
	case "linux":
		osName = "linux"
	case "darwin":
		osName = "osx"
	default:
		return "", "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}

	var arch string
	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	case "arm":
		arch = "arm"
	default:
		return "", "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}

	return osName, arch, nil
}

// normalizePermissions walks the unpacked tree and applies a uniform mode so
// the runner's scripts are executable regardless of how the archive was built.
func normalizePermissions(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return os.Chmod(path, dirMode)
	})
}
