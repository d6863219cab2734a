package cicontext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sgaunet/ci-driver/internal/cicontext"
)

func TestFromEnv(t *testing.T) {
	t.Run("reads the workflow environment", func(t *testing.T) {
		t.Setenv("GITHUB_EVENT_NAME", "pull_request")
		t.Setenv("GITHUB_SHA", "abc123")
		t.Setenv("GITHUB_REF", "refs/pull/42/merge")
		t.Setenv("GITHUB_HEAD_REF", "feature/login")
		t.Setenv("GITHUB_RUN_ID", "987654")
		t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
		t.Setenv("GITHUB_TOKEN", "ghs_ambient")

		ci := cicontext.FromEnv()
		assert.Equal(t, "pull_request", ci.EventName)
		assert.Equal(t, "abc123", ci.SHA)
		assert.Equal(t, "refs/pull/42/merge", ci.Ref)
		assert.Equal(t, "feature/login", ci.HeadRef)
		assert.Equal(t, int64(987654), ci.RunID)
		assert.Equal(t, "acme/widgets", ci.Repository)
		assert.Equal(t, "ghs_ambient", ci.Token)
		assert.True(t, ci.InCI())
	})

	t.Run("missing variables yield the zero value", func(t *testing.T) {
		t.Setenv("GITHUB_EVENT_NAME", "")
		t.Setenv("GITHUB_SHA", "")
		t.Setenv("GITHUB_REF", "")
		t.Setenv("GITHUB_HEAD_REF", "")
		t.Setenv("GITHUB_RUN_ID", "")
		t.Setenv("GITHUB_REPOSITORY", "")
		t.Setenv("GITHUB_TOKEN", "")

		ci := cicontext.FromEnv()
		assert.Equal(t, cicontext.Context{}, ci)
		assert.False(t, ci.InCI())
	})

	t.Run("malformed run id stays zero", func(t *testing.T) {
		t.Setenv("GITHUB_RUN_ID", "not-a-number")

		ci := cicontext.FromEnv()
		assert.Zero(t, ci.RunID)
		assert.False(t, ci.InCI())
	})
}
