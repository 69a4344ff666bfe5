package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"dartscore/internal/domain"
	"dartscore/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// storedLeg is the JSON document written for each finished leg.
type storedLeg struct {
	SessionID string      `json:"session_id"`
	LegNumber int         `json:"leg_number"`
	DoubleOut bool        `json:"double_out"`
	Leg       *domain.Leg `json:"leg"`
}

// NakamaLegArchive implements ports.LegArchive using Nakama storage.
type NakamaLegArchive struct {
	nk runtime.NakamaModule
}

// NewNakamaLegArchive creates a new leg archive adapter.
func NewNakamaLegArchive(nk runtime.NakamaModule) *NakamaLegArchive {
	return &NakamaLegArchive{nk: nk}
}

// RecordLeg writes the leg to the owner's storage, readable only by the owner.
func (a *NakamaLegArchive) RecordLeg(ctx context.Context, rec ports.LegRecord) error {
	if rec.Leg == nil || !rec.Leg.Finished {
		return fmt.Errorf("refusing to archive unfinished leg %d", rec.LegNumber)
	}
	value, err := json.Marshal(storedLeg{
		SessionID: rec.SessionID,
		LegNumber: rec.LegNumber,
		DoubleOut: rec.DoubleOut,
		Leg:       rec.Leg,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal leg: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      LegArchiveCollection,
		Key:             legArchiveKey(rec.SessionID, rec.LegNumber),
		UserID:          rec.OwnerID,
		Value:           string(value),
		PermissionRead:  1,
		PermissionWrite: 0,
	}})
	if err != nil {
		return fmt.Errorf("failed to write leg %d for user %s: %w", rec.LegNumber, rec.OwnerID, err)
	}
	return nil
}

func legArchiveKey(sessionID string, legNumber int) string {
	return fmt.Sprintf("%s:%03d", sessionID, legNumber)
}
