package app

import (
	"errors"
	"fmt"

	"dartscore/internal/domain"
)

// LeadPolicy decides who throws first in the next leg.
type LeadPolicy int

const (
	// LeadRotate hands the lead to the player after the previous leg's winner.
	LeadRotate LeadPolicy = iota
	// LeadFixed keeps the previous leg's first thrower.
	LeadFixed
)

// Service contains X01 use-cases operating on domain state.
type Service struct {
	lead LeadPolicy
}

// NewService constructs a Service with the given lead policy.
func NewService(lead LeadPolicy) *Service {
	return &Service{lead: lead}
}

var (
	ErrNilLeg         = errors.New("leg is nil")
	ErrNilMatch       = errors.New("match is nil")
	ErrLegInProgress  = errors.New("current leg has not finished")
	ErrTooManyPlayers = errors.New("roster exceeds player limit")
)

// VisitOutcome reports what a submitted visit did to the leg.
type VisitOutcome struct {
	PlayerID string
	LegEnded bool
	WinnerID string
	// Stale is set when the leg was already finished and the visit was ignored.
	Stale bool
	Visit domain.TurnResult
}

// CreateLeg builds a leg for roster, optionally forcing the first thrower.
func (s *Service) CreateLeg(startingScore int, roster []domain.RosterEntry, firstThrowerID string) (*domain.Leg, error) {
	if len(roster) > MaxPlayersPerMatch {
		return nil, fmt.Errorf("%w: %d players", ErrTooManyPlayers, len(roster))
	}
	return domain.NewLeg(startingScore, roster, firstThrowerID)
}

// CreateMatch starts a match whose first leg follows roster order.
func (s *Service) CreateMatch(startingScore int, roster []domain.RosterEntry, totalLegs int) (*domain.Match, []Event, error) {
	if len(roster) > MaxPlayersPerMatch {
		return nil, nil, fmt.Errorf("%w: %d players", ErrTooManyPlayers, len(roster))
	}
	match, err := domain.NewMatch(startingScore, roster, totalLegs)
	if err != nil {
		return nil, nil, err
	}
	return match, []Event{legStarted(match)}, nil
}

// PlayVisit scores a visit for the active player of leg.
// A finished leg is left untouched and the stored winner is echoed back.
func (s *Service) PlayVisit(leg *domain.Leg, throws []domain.Throw, doubleOut bool) (VisitOutcome, []Event, error) {
	if leg == nil {
		return VisitOutcome{}, nil, ErrNilLeg
	}
	if leg.Finished {
		return VisitOutcome{
			LegEnded: true,
			WinnerID: leg.WinnerID,
			Stale:    true,
			Visit:    domain.TurnResult{CheckoutThrowIndex: -1},
		}, nil, nil
	}

	pl, err := leg.ActivePlayer()
	if err != nil {
		return VisitOutcome{}, nil, err
	}
	res, err := domain.EvaluateTurn(pl.Remaining, throws, doubleOut)
	if err != nil {
		return VisitOutcome{}, nil, err
	}

	pl.Remaining = res.ResultingScore
	pl.Visits++
	pl.DartsThrown += res.ThrowsUsed

	outcome := VisitOutcome{PlayerID: pl.ID, Visit: res}
	visit := VisitPayload{
		PlayerID:       pl.ID,
		Throws:         append([]domain.Throw(nil), throws...),
		Result:         res,
		RemainingAfter: pl.Remaining,
	}

	if res.Finished {
		leg.WinnerID = pl.ID
		leg.Finished = true
		outcome.LegEnded = true
		outcome.WinnerID = pl.ID
		return outcome, []Event{
			{Kind: EventVisitScored, Payload: visit},
			{Kind: EventLegWon, Payload: LegWonPayload{
				WinnerID:       pl.ID,
				CheckoutPoints: res.Points,
				DartsThrown:    pl.DartsThrown,
			}},
		}, nil
	}

	// Busts rotate exactly like scored visits.
	leg.ActiveIndex = (leg.ActiveIndex + 1) % len(leg.TurnOrder)
	visit.NextThrowerID = leg.TurnOrder[leg.ActiveIndex]

	kind := EventVisitScored
	if res.Bust {
		kind = EventVisitBust
	}
	return outcome, []Event{{Kind: kind, Payload: visit}}, nil
}

// AdvanceToNextLeg credits the finished leg to its winner and replaces it
// with a fresh leg. A nil roster reuses the previous leg's players; a zero
// startingScoreOverride keeps the previous starting score.
func (s *Service) AdvanceToNextLeg(match *domain.Match, roster []domain.RosterEntry, startingScoreOverride int) ([]Event, error) {
	if match == nil || match.CurrentLeg == nil {
		return nil, ErrNilMatch
	}
	prev := match.CurrentLeg
	if !prev.Finished {
		return nil, ErrLegInProgress
	}
	if len(roster) == 0 {
		roster = prev.Roster()
	}
	if len(roster) > MaxPlayersPerMatch {
		return nil, fmt.Errorf("%w: %d players", ErrTooManyPlayers, len(roster))
	}
	score := prev.StartingScore
	if startingScoreOverride > 0 {
		score = startingScoreOverride
	}

	next, err := domain.NewLeg(score, roster, s.nextLead(prev))
	if err != nil {
		return nil, err
	}

	if match.LegsWon == nil {
		match.LegsWon = make(map[string]int, len(roster))
	}
	match.LegsWon[prev.WinnerID]++
	for _, r := range roster {
		if _, ok := match.LegsWon[r.ID]; !ok {
			match.LegsWon[r.ID] = 0
		}
	}
	match.LegsPlayed++
	if match.CurrentLegNumber < match.TotalLegs {
		match.CurrentLegNumber++
	}
	match.CurrentLeg = next

	var events []Event
	if !match.Complete && match.LegsPlayed >= match.TotalLegs {
		match.Complete = true
		events = append(events, Event{
			Kind: EventMatchCompleted,
			Payload: MatchCompletedPayload{
				WinnerID: match.WinnerID(),
				LegsWon:  copyTally(match.LegsWon),
			},
		})
	}
	return append(events, legStarted(match)), nil
}

func (s *Service) nextLead(prev *domain.Leg) string {
	if s.lead == LeadFixed && len(prev.TurnOrder) > 0 {
		return prev.TurnOrder[0]
	}
	// The winner's index was not advanced, so the next thrower is the
	// player after the winner.
	return prev.NextThrowerID()
}

func legStarted(match *domain.Match) Event {
	return Event{
		Kind: EventLegStarted,
		Payload: LegStartedPayload{
			LegNumber:     match.CurrentLegNumber,
			StartingScore: match.CurrentLeg.StartingScore,
			TurnOrder:     append([]string(nil), match.CurrentLeg.TurnOrder...),
		},
	}
}

func copyTally(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
