package platform

import (
	"fmt"

	"github.com/sgaunet/bullets"

	"github.com/sgaunet/ci-driver/internal/cicontext"
	"github.com/sgaunet/ci-driver/internal/identity"
	"github.com/sgaunet/ci-driver/pkg/config"
	ghclient "github.com/sgaunet/ci-driver/pkg/github"
)

// NewProvider creates the Provider implementation for the requested forge.
// The coordinate is resolved from the configured repository URL, falling
// back to the ambient CI context.
//
//nolint:ireturn // Factory function must return interface to enable platform abstraction.
func NewProvider(kind Kind, cfg *config.Config, ci cicontext.Context, logger *bullets.Logger) (Provider, error) {
	switch kind {
	case KindGitHub:
		coord, err := identity.Resolve(cfg.Repository, ci)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve coordinate: %w", err)
		}

		client, err := ghclient.NewClient(cfg.Token, ci)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		client.SetLogger(logger)
		client.SetCoordinate(coord)
		client.WarnProvenance(cfg.Token)

		return NewGitHubAdapter(client, cfg.Token, logger), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}
