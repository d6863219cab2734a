package mocks

import (
	"context"

	"github.com/sgaunet/ci-driver/pkg/provision"
)

// Fetcher is a mock implementation of provision.Fetcher.
type Fetcher struct {
	callRecorder

	FetchArchiveError error

	// WriteFiles maps relative paths to contents written into the
	// extraction directory on success, simulating an unpacked archive.
	WriteFiles map[string]string
}

// NewFetcher creates a new mock archive fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// FetchArchive implements provision.Fetcher.
func (m *Fetcher) FetchArchive(_ context.Context, url, dir string) error {
	m.trackCall("FetchArchive", map[string]any{"url": url, "dir": dir})
	if m.FetchArchiveError != nil {
		return m.FetchArchiveError
	}
	for path, content := range m.WriteFiles {
		if err := writeExtracted(dir, path, content); err != nil {
			return err
		}
	}
	return nil
}

var _ provision.Fetcher = (*Fetcher)(nil)
