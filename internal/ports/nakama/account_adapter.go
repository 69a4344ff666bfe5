package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates an account adapter backed by Nakama.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// DisplayName returns the account's display name, or its username when unset.
func (a *NakamaAccountAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get account: %w", err)
	}
	user := account.GetUser()
	if name := user.GetDisplayName(); name != "" {
		return name, nil
	}
	return user.GetUsername(), nil
}
