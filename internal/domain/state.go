package domain

import "fmt"

// RosterEntry identifies a player taking part in a match.
type RosterEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PlayerState holds a player's running score within a single leg.
type PlayerState struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Remaining   int    `json:"remaining"`
	Visits      int    `json:"visits"`
	DartsThrown int    `json:"darts_thrown"`
}

// PointsScored returns how much the player has taken off startingScore.
func (p *PlayerState) PointsScored(startingScore int) int {
	return startingScore - p.Remaining
}

// ThreeDartAverage returns points per three darts for the leg so far.
func (p *PlayerState) ThreeDartAverage(startingScore int) float64 {
	if p.DartsThrown == 0 {
		return 0
	}
	return float64(p.PointsScored(startingScore)) * 3 / float64(p.DartsThrown)
}

// Leg is one race from StartingScore to zero.
// Finished is true exactly when WinnerID is set; a finished leg is never reopened.
type Leg struct {
	StartingScore int                     `json:"starting_score"`
	TurnOrder     []string                `json:"turn_order"`
	ActiveIndex   int                     `json:"active_index"`
	Players       map[string]*PlayerState `json:"players"`
	WinnerID      string                  `json:"winner_id,omitempty"`
	Finished      bool                    `json:"finished"`
}

// ActivePlayer returns the player due to throw.
func (l *Leg) ActivePlayer() (*PlayerState, error) {
	if l.ActiveIndex < 0 || l.ActiveIndex >= len(l.TurnOrder) {
		return nil, fmt.Errorf("%w: active index %d of %d", ErrUnknownPlayer, l.ActiveIndex, len(l.TurnOrder))
	}
	id := l.TurnOrder[l.ActiveIndex]
	pl, ok := l.Players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	return pl, nil
}

// NextThrowerID returns the player after the active one in turn order.
func (l *Leg) NextThrowerID() string {
	if len(l.TurnOrder) == 0 {
		return ""
	}
	return l.TurnOrder[(l.ActiveIndex+1)%len(l.TurnOrder)]
}

// Roster returns the leg's players as roster entries in turn order.
func (l *Leg) Roster() []RosterEntry {
	out := make([]RosterEntry, 0, len(l.TurnOrder))
	for _, id := range l.TurnOrder {
		entry := RosterEntry{ID: id}
		if pl, ok := l.Players[id]; ok {
			entry.DisplayName = pl.DisplayName
		}
		out = append(out, entry)
	}
	return out
}

// Match is a sequence of legs played by the same roster.
// Only the current leg is retained.
type Match struct {
	TotalLegs        int            `json:"total_legs"`
	CurrentLegNumber int            `json:"current_leg_number"`
	LegsPlayed       int            `json:"legs_played"`
	LegsWon          map[string]int `json:"legs_won"`
	Complete         bool           `json:"complete"`
	CurrentLeg       *Leg           `json:"current_leg"`
}

// WinnerID returns the player with the most legs won, or "" when
// the lead is shared.
func (m *Match) WinnerID() string {
	best, bestID, tied := -1, "", false
	for id, won := range m.LegsWon {
		switch {
		case won > best:
			best, bestID, tied = won, id, false
		case won == best:
			tied = true
		}
	}
	if tied || best <= 0 {
		return ""
	}
	return bestID
}

// NewLeg builds a fresh leg. Turn order follows the roster; when
// firstThrowerID names a roster player the order is rotated so they throw
// first, otherwise it is ignored.
func NewLeg(startingScore int, roster []RosterEntry, firstThrowerID string) (*Leg, error) {
	if startingScore <= 0 {
		return nil, fmt.Errorf("%w: starting score %d", ErrInvalidScore, startingScore)
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	order := make([]string, 0, len(roster))
	players := make(map[string]*PlayerState, len(roster))
	for _, r := range roster {
		if _, dup := players[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, r.ID)
		}
		order = append(order, r.ID)
		players[r.ID] = &PlayerState{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Remaining:   startingScore,
		}
	}

	return &Leg{
		StartingScore: startingScore,
		TurnOrder:     rotateTo(order, firstThrowerID),
		Players:       players,
	}, nil
}

// NewMatch builds a match whose first leg follows roster order.
func NewMatch(startingScore int, roster []RosterEntry, totalLegs int) (*Match, error) {
	if totalLegs < 1 {
		totalLegs = 1
	}
	leg, err := NewLeg(startingScore, roster, "")
	if err != nil {
		return nil, err
	}
	won := make(map[string]int, len(roster))
	for _, r := range roster {
		won[r.ID] = 0
	}
	return &Match{
		TotalLegs:        totalLegs,
		CurrentLegNumber: 1,
		LegsWon:          won,
		CurrentLeg:       leg,
	}, nil
}

// rotateTo cyclically shifts order so that id is first. Unknown ids leave
// the order unchanged.
func rotateTo(order []string, id string) []string {
	if id == "" {
		return order
	}
	for i, v := range order {
		if v == id {
			return append(append(make([]string, 0, len(order)), order[i:]...), order[:i]...)
		}
	}
	return order
}
