package ports

import (
	"context"

	"dartscore/internal/domain"
)

// LegRecord is a finished leg handed off for safekeeping. The core keeps
// only the current leg, so anything older lives behind this port.
type LegRecord struct {
	SessionID string
	OwnerID   string
	LegNumber int
	DoubleOut bool
	Leg       *domain.Leg
}

// LegArchive stores finished legs.
type LegArchive interface {
	// RecordLeg persists a finished leg. Implementations must not mutate rec.Leg.
	RecordLeg(ctx context.Context, rec LegRecord) error
}
