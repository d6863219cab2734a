package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sgaunet/bullets"

	"github.com/sgaunet/ci-driver/internal/security"
)

var errUnknownMergeMode = errors.New("unknown merge mode (want merge, squash or rebase)")

// Merger orchestrates pull request merging: it attempts the provider-native
// automatic merge and, for a bounded set of provider-reported incapacities,
// falls back to an immediate synchronous merge. Any failure outside that set
// propagates unchanged: bad credentials or a nonexistent pull request must
// never be silently downgraded to an immediate-merge attempt.
type Merger struct {
	api       MergeAPI
	log       *bullets.Logger
	tolerated []string
}

// NewMerger creates a merge orchestrator with the default tolerated-error
// set.
func NewMerger(api MergeAPI, log *bullets.Logger) *Merger {
	return &Merger{
		api:       api,
		log:       log,
		tolerated: defaultToleratedMergeErrors,
	}
}

// SetToleratedErrors replaces the list of provider messages treated as
// "automatic merge unavailable". Matching is by case-insensitive substring.
func (m *Merger) SetToleratedErrors(messages []string) {
	m.tolerated = messages
}

// EnableAutoMerge enables the provider-native automatic merge for the pull
// request, falling back to an immediate merge when the provider reports it
// cannot defer the merge here. The fallback uses the same mode and the same
// split commit message.
func (m *Merger) EnableAutoMerge(ctx context.Context, opts MergeOptions) error {
	graphqlMethod, restMethod, err := mergeMethods(opts.Mode)
	if err != nil {
		return err
	}
	headline, body := SplitMessage(opts.Message)

	nodeID, err := m.api.PullRequestNodeID(ctx, opts.Number)
	if err != nil {
		return err
	}

	err = m.api.EnableAutoMerge(ctx, nodeID, graphqlMethod, headline, body)
	if err == nil {
		m.log.Info(fmt.Sprintf("Auto-merge enabled for pull request #%d", opts.Number))
		return nil
	}
	if !m.toleratedError(err) {
		return err
	}

	m.diagnose(ctx, opts.Base)

	m.log.Info(fmt.Sprintf("Falling back to immediate merge of pull request #%d", opts.Number))
	if err := m.api.MergePullRequest(ctx, opts.Number, restMethod, headline, body); err != nil {
		return err
	}
	return nil
}

// diagnose explains why auto-merge was unavailable. The branch-protection
// query only affects the warning text; the fallback proceeds either way.
func (m *Merger) diagnose(ctx context.Context, base string) {
	protected, err := m.api.BranchProtected(ctx, base)
	if err != nil {
		m.log.Warn(fmt.Sprintf("Auto-merge unavailable; branch protection query failed: %s",
			security.SanitizeString(err.Error())))
		return
	}
	if protected {
		m.log.Warn("Auto-merge unavailable; enable auto-merge in the repository settings")
		return
	}
	m.log.Warn(fmt.Sprintf(
		"Auto-merge unavailable; configure branch protection with required status checks on %q", base))
}

func (m *Merger) toleratedError(err error) bool {
	message := strings.ToLower(err.Error())
	for _, tolerated := range m.tolerated {
		if strings.Contains(message, strings.ToLower(tolerated)) {
			return true
		}
	}
	return false
}

// mergeMethods normalizes a merge mode into the casing each provider surface
// accepts verbatim: upper-case for the GraphQL mutation, lower-case for the
// REST merge.
func mergeMethods(mode string) (string, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case "merge", "squash", "rebase":
		return strings.ToUpper(normalized), normalized, nil
	default:
		return "", "", fmt.Errorf("%w: %q", errUnknownMergeMode, mode)
	}
}
