package domain

import "fmt"

const (
	// BullFace is the face value used for both the outer and the inner bullseye.
	BullFace = 25
	// MaxFace is the highest numbered segment on the board.
	MaxFace = 20
	// MaxThrowsPerVisit is the number of darts a player may throw in one visit.
	MaxThrowsPerVisit = 3
)

// Multiplier is the ring a dart landed in.
type Multiplier int

const (
	Single Multiplier = 1
	Double Multiplier = 2
	Triple Multiplier = 3
)

// Throw is a single dart: the segment hit and its multiplier.
// Face 0 is a miss, face 25 is the bullseye.
type Throw struct {
	Face       int        `json:"face"`
	Multiplier Multiplier `json:"multiplier"`
}

// Points returns the score of the dart. The bullseye scores 50 on a double
// and 25 otherwise.
func (t Throw) Points() int {
	if t.Face == BullFace {
		if t.Multiplier == Double {
			return 50
		}
		return 25
	}
	return t.Face * int(t.Multiplier)
}

// IsDouble reports whether the dart counts as a double for a checkout.
// The inner bull is a double.
func (t Throw) IsDouble() bool {
	return t.Multiplier == Double
}

// Validate checks the dart lies inside the board's domain.
func (t Throw) Validate() error {
	if t.Multiplier < Single || t.Multiplier > Triple {
		return fmt.Errorf("%w: multiplier %d", ErrInvalidThrow, t.Multiplier)
	}
	if t.Face == BullFace {
		if t.Multiplier == Triple {
			return fmt.Errorf("%w: triple bull", ErrInvalidThrow)
		}
		return nil
	}
	if t.Face < 0 || t.Face > MaxFace {
		return fmt.Errorf("%w: face %d", ErrInvalidThrow, t.Face)
	}
	return nil
}

func (t Throw) String() string {
	if t.Face == 0 {
		return "MISS"
	}
	if t.Face == BullFace {
		if t.Multiplier == Double {
			return "DBULL"
		}
		return "BULL"
	}
	switch t.Multiplier {
	case Double:
		return fmt.Sprintf("D%d", t.Face)
	case Triple:
		return fmt.Sprintf("T%d", t.Face)
	default:
		return fmt.Sprintf("S%d", t.Face)
	}
}
