package app

import "dartscore/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventLegStarted     EventKind = "leg_started"
	EventVisitScored    EventKind = "visit_scored"
	EventVisitBust      EventKind = "visit_bust"
	EventLegWon         EventKind = "leg_won"
	EventMatchCompleted EventKind = "match_completed"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type LegStartedPayload struct {
	LegNumber     int
	StartingScore int
	TurnOrder     []string
}

// VisitPayload is shared by scored and bust visits.
type VisitPayload struct {
	PlayerID       string
	Throws         []domain.Throw
	Result         domain.TurnResult
	NextThrowerID  string
	RemainingAfter int
}

type LegWonPayload struct {
	WinnerID       string
	CheckoutPoints int
	DartsThrown    int
}

type MatchCompletedPayload struct {
	WinnerID string
	LegsWon  map[string]int
}
