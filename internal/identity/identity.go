// Package identity resolves the (owner, repository) coordinate a driver
// operates against. The coordinate is derived per call from an explicit
// repository or organization URL, from a local git checkout's origin remote,
// or from the ambient CI context; it is never persisted.
package identity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/sgaunet/ci-driver/internal/cicontext"
)

var (
	// ErrInvalidURL is returned when no owner can be extracted from a URL.
	ErrInvalidURL = errors.New("invalid repository URL")

	// ErrNoCoordinate is returned when neither an explicit URL nor the
	// ambient context yields a coordinate.
	ErrNoCoordinate = errors.New("no repository or organization coordinate available")
)

// Coordinate identifies the target of provider operations.
// An empty Repo means the target is an organization rather than a single
// repository, which changes the provider endpoints that apply.
type Coordinate struct {
	Owner string
	Repo  string
}

// IsOrg reports whether the coordinate targets an organization.
func (c Coordinate) IsOrg() bool {
	return c.Repo == ""
}

// Slug returns "owner" or "owner/repo".
func (c Coordinate) Slug() string {
	if c.IsOrg() {
		return c.Owner
	}
	return c.Owner + "/" + c.Repo
}

// FromURL derives a coordinate from a repository or organization URL.
// Supported forms:
//   - https://github.com/owner            (organization target)
//   - https://github.com/owner/repo[.git] (repository target)
//   - ssh://git@github.com/owner/repo[.git]
//   - git@github.com:owner/repo[.git]
func FromURL(rawURL string) (Coordinate, error) {
	trimmed := strings.TrimSuffix(strings.TrimRight(rawURL, "/"), ".git")

	switch {
	case strings.HasPrefix(trimmed, "http://"),
		strings.HasPrefix(trimmed, "https://"),
		strings.HasPrefix(trimmed, "ssh://"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return Coordinate{}, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
		}
		return fromPath(strings.Trim(u.Path, "/"), rawURL)

	case strings.HasPrefix(trimmed, "git@"):
		// scp-style remote: everything after the colon is the path.
		_, path, found := strings.Cut(trimmed, ":")
		if !found {
			return Coordinate{}, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
		}
		return fromPath(strings.Trim(path, "/"), rawURL)

	default:
		return Coordinate{}, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
}

// FromRepository derives the coordinate from a local checkout's origin remote.
func FromRepository(path string) (Coordinate, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to open git repository: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to get origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return Coordinate{}, fmt.Errorf("%w: origin remote has no URL", ErrInvalidURL)
	}
	return FromURL(urls[0])
}

// Resolve derives the coordinate from the explicit URL when given, falling
// back to the repository slug carried by the ambient CI context. The
// decision is made once per call.
func Resolve(explicitURL string, ci cicontext.Context) (Coordinate, error) {
	if explicitURL != "" {
		return FromURL(explicitURL)
	}

	if ci.Repository != "" {
		return fromPath(ci.Repository, ci.Repository)
	}

	return Coordinate{}, ErrNoCoordinate
}

func fromPath(path, original string) (Coordinate, error) {
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return Coordinate{Owner: parts[0]}, nil
	case len(parts) >= 2 && parts[0] != "" && parts[1] != "":
		// Deeper paths (enterprise installs behind a prefix) keep the last
		// two components, matching how remotes name repositories.
		return Coordinate{Owner: parts[len(parts)-2], Repo: parts[len(parts)-1]}, nil
	default:
		return Coordinate{}, fmt.Errorf("%w: %s", ErrInvalidURL, original)
	}
}
