// Package gitcmd generates the shell command sequence that reconfigures a
// checkout's git remote for pushes authenticated with the driver credential.
// The commands are emitted as text for an external shell to execute; nothing
// here touches the repository in-process.
package gitcmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsupportedRemote is returned for remotes that are not http(s) URLs.
var ErrUnsupportedRemote = errors.New("remote URL must be http or https")

// Identity is the commit author written into the repository config.
type Identity struct {
	Name  string
	Email string
}

// RemoteSetup returns the command sequence that unsets the proxy-injected
// auth header, sets the commit author identity, and rewrites the origin
// remote URL to embed the credential. The rewritten URL always carries a
// .git suffix.
func RemoteSetup(remoteURL, token string, id Identity) ([]string, error) {
	authURL, headerKey, err := credentialURL(remoteURL, token)
	if err != nil {
		return nil, err
	}

	return []string{
		fmt.Sprintf("git config --unset %s", headerKey),
		fmt.Sprintf("git config user.name %q", id.Name),
		fmt.Sprintf("git config user.email %q", id.Email),
		fmt.Sprintf("git remote set-url origin %s", authURL),
	}, nil
}

// credentialURL embeds the token into the remote URL as userinfo and
// returns it alongside the extraheader config key for the remote's host.
func credentialURL(remoteURL, token string) (string, string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse remote URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedRemote, u.Scheme)
	}

	u.User = url.User(token)
	if !strings.HasSuffix(u.Path, ".git") {
		u.Path += ".git"
	}

	headerKey := fmt.Sprintf("http.%s://%s/.extraheader", u.Scheme, u.Host)
	return u.String(), headerKey, nil
}
