package ports

import "context"

// AccountPort resolves account details for players joining a session.
type AccountPort interface {
	// DisplayName returns the name to show for userID, falling back to the
	// username when no display name is set.
	DisplayName(ctx context.Context, userID string) (string, error)
}
