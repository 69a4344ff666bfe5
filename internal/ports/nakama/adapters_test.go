package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"dartscore/internal/domain"
	"dartscore/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAdapterDisplayName(t *testing.T) {
	nk := &mockNakama{accounts: map[string]*api.Account{
		"named":   {User: &api.User{Id: "named", Username: "ann_01", DisplayName: "Ann"}},
		"unnamed": {User: &api.User{Id: "unnamed", Username: "bob_02"}},
	}}
	adapter := NewNakamaAccountAdapter(nk)

	name, err := adapter.DisplayName(context.Background(), "named")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	name, err = adapter.DisplayName(context.Background(), "unnamed")
	require.NoError(t, err)
	assert.Equal(t, "bob_02", name)

	_, err = adapter.DisplayName(context.Background(), "missing")
	assert.Error(t, err)
}

func finishedLeg(t *testing.T) *domain.Leg {
	t.Helper()
	leg, err := domain.NewLeg(301, []domain.RosterEntry{{ID: "a", DisplayName: "A"}, {ID: "b", DisplayName: "B"}}, "")
	require.NoError(t, err)
	leg.Players["a"].Remaining = 0
	leg.WinnerID = "a"
	leg.Finished = true
	return leg
}

func TestLegArchiveRecordLeg(t *testing.T) {
	nk := &mockNakama{}
	archive := NewNakamaLegArchive(nk)

	err := archive.RecordLeg(context.Background(), ports.LegRecord{
		SessionID: "m1.nakama",
		OwnerID:   "a",
		LegNumber: 12,
		DoubleOut: true,
		Leg:       finishedLeg(t),
	})
	require.NoError(t, err)
	require.Len(t, nk.writes, 1)

	w := nk.writes[0]
	assert.Equal(t, LegArchiveCollection, w.Collection)
	assert.Equal(t, "m1.nakama:012", w.Key)
	assert.Equal(t, "a", w.UserID)
	assert.Equal(t, 1, w.PermissionRead)
	assert.Equal(t, 0, w.PermissionWrite)

	var stored storedLeg
	require.NoError(t, json.Unmarshal([]byte(w.Value), &stored))
	assert.Equal(t, 12, stored.LegNumber)
	assert.True(t, stored.DoubleOut)
	assert.Equal(t, "a", stored.Leg.WinnerID)
	assert.Equal(t, []string{"a", "b"}, stored.Leg.TurnOrder)
}

func TestLegArchiveRefusesUnfinishedLeg(t *testing.T) {
	nk := &mockNakama{}
	archive := NewNakamaLegArchive(nk)

	leg, err := domain.NewLeg(501, []domain.RosterEntry{{ID: "a", DisplayName: "A"}}, "")
	require.NoError(t, err)

	assert.Error(t, archive.RecordLeg(context.Background(), ports.LegRecord{OwnerID: "a", LegNumber: 1, Leg: leg}))
	assert.Error(t, archive.RecordLeg(context.Background(), ports.LegRecord{OwnerID: "a", LegNumber: 1}))
	assert.Empty(t, nk.writes)
}

func TestComputeLabel(t *testing.T) {
	state := &MatchState{}
	assert.Equal(t, LabelPayload{Open: true, Game: "x01", Phase: "lobby"}, ComputeLabel(state))

	state.OwnerID = "owner"
	match, err := domain.NewMatch(501, []domain.RosterEntry{{ID: "owner", DisplayName: "Ann"}}, 1)
	require.NoError(t, err)
	state.Match = match
	assert.Equal(t, LabelPayload{Open: false, Game: "x01", Phase: "playing", Owner: "owner"}, ComputeLabel(state))

	match.Complete = true
	assert.Equal(t, "complete", ComputeLabel(state).Phase)
}

func TestEncodeStructKeepsZeroValues(t *testing.T) {
	b, err := encodeStruct(map[string]interface{}{
		"winner_id": "",
		"finished":  false,
		"players":   []interface{}{},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, map[string]interface{}{"winner_id": "", "finished": false, "players": []interface{}{}}, decoded)
}
