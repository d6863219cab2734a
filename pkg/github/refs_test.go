package github_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgaunet/ci-driver/internal/cicontext"
	"github.com/sgaunet/ci-driver/pkg/github"
)

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{"branch ref", "refs/heads/main", "main"},
		{"tag ref", "refs/tags/v1.2.0", "v1.2.0"},
		{"nested branch ref", "refs/heads/feature/login", "feature/login"},
		{"bare name unchanged", "main", "main"},
		{"only one prefix stripped", "refs/heads/refs/heads/main", "refs/heads/main"},
		{"unknown prefix unchanged", "refs/remotes/origin/main", "refs/remotes/origin/main"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, github.NormalizeRef(tt.ref))
		})
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		headline string
		body     string
	}{
		{"headline only", "Fix login redirect", "Fix login redirect", ""},
		{"headline and body", "Fix login redirect\n\nThe redirect looped on expired sessions.",
			"Fix login redirect", "The redirect looped on expired sessions."},
		{"no blank line", "Fix login redirect\ndetails", "Fix login redirect", "details"},
		{"crlf line endings", "Fix login redirect\r\n\r\ndetails", "Fix login redirect", "details"},
		{"empty message", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headline, body := github.SplitMessage(tt.message)
			assert.Equal(t, tt.headline, headline)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestCurrentBranch(t *testing.T) {
	t.Run("head ref wins on pull_request events", func(t *testing.T) {
		ci := cicontext.Context{Ref: "refs/pull/42/merge", HeadRef: "feature/login"}
		assert.Equal(t, "feature/login", github.CurrentBranch(ci))
	})

	t.Run("ref name is normalized otherwise", func(t *testing.T) {
		ci := cicontext.Context{Ref: "refs/heads/main"}
		assert.Equal(t, "main", github.CurrentBranch(ci))
	})
}

func TestCurrentSHA(t *testing.T) {
	ci := cicontext.Context{SHA: "abc123"}
	assert.Equal(t, "abc123", github.CurrentSHA(ci))
}
