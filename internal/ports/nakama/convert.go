package nakama

import (
	"dartscore/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// throwMessage is a dart as sent by clients.
type throwMessage struct {
	Face       int `json:"face"`
	Multiplier int `json:"multiplier"`
}

func throwsFromMessages(in []throwMessage) []domain.Throw {
	out := make([]domain.Throw, 0, len(in))
	for _, t := range in {
		out = append(out, domain.Throw{Face: t.Face, Multiplier: domain.Multiplier(t.Multiplier)})
	}
	return out
}

func throwsToList(throws []domain.Throw) []interface{} {
	out := make([]interface{}, 0, len(throws))
	for _, t := range throws {
		out = append(out, map[string]interface{}{
			"face":       t.Face,
			"multiplier": int(t.Multiplier),
			"label":      t.String(),
		})
	}
	return out
}

func stringsToList(in []string) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func tallyToMap(in map[string]int) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func rosterToList(roster []domain.RosterEntry) []interface{} {
	out := make([]interface{}, 0, len(roster))
	for _, r := range roster {
		out = append(out, map[string]interface{}{
			"id":           r.ID,
			"display_name": r.DisplayName,
		})
	}
	return out
}

func turnResultToMap(res domain.TurnResult) map[string]interface{} {
	return map[string]interface{}{
		"resulting_score":      res.ResultingScore,
		"bust":                 res.Bust,
		"finished":             res.Finished,
		"checkout_throw_index": res.CheckoutThrowIndex,
		"throws_used":          res.ThrowsUsed,
		"points":               res.Points,
	}
}

func legToMap(leg *domain.Leg, doubleOut bool) map[string]interface{} {
	players := make([]interface{}, 0, len(leg.TurnOrder))
	for _, id := range leg.TurnOrder {
		pl, ok := leg.Players[id]
		if !ok {
			continue
		}
		players = append(players, map[string]interface{}{
			"id":           pl.ID,
			"display_name": pl.DisplayName,
			"remaining":    pl.Remaining,
			"visits":       pl.Visits,
			"darts_thrown": pl.DartsThrown,
			"average":      pl.ThreeDartAverage(leg.StartingScore),
		})
	}

	active := ""
	checkout := []interface{}{}
	if pl, err := leg.ActivePlayer(); err == nil {
		active = pl.ID
		if !leg.Finished {
			if path, ok := domain.SuggestCheckout(pl.Remaining, domain.MaxThrowsPerVisit, doubleOut); ok {
				checkout = throwsToList(path)
			}
		}
	}
	return map[string]interface{}{
		"starting_score":   leg.StartingScore,
		"turn_order":       stringsToList(leg.TurnOrder),
		"active_player_id": active,
		"checkout":         checkout,
		"winner_id":        leg.WinnerID,
		"finished":         leg.Finished,
		"players":          players,
	}
}

func matchToMap(m *domain.Match, doubleOut bool) map[string]interface{} {
	out := map[string]interface{}{
		"current_leg_number": m.CurrentLegNumber,
		"total_legs":         m.TotalLegs,
		"legs_played":        m.LegsPlayed,
		"legs_won":           tallyToMap(m.LegsWon),
		"complete":           m.Complete,
		"winner_id":          m.WinnerID(),
	}
	if m.CurrentLeg != nil {
		out["leg"] = legToMap(m.CurrentLeg, doubleOut)
	}
	return out
}

// encodeStruct renders a payload map as protobuf Struct JSON.
func encodeStruct(payload map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, err
	}
	return (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
}
