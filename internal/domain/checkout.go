package domain

// MaxCheckout is the highest score that can be finished in one visit on a double.
const MaxCheckout = 170

// preferredDoubles lists finishing doubles by how commonly they are aimed at.
var preferredDoubles = []int{20, 16, 18, 12, 10, 8, 14, 6, 4, 2, 19, 17, 15, 13, 11, 9, 7, 5, 3, 1}

var (
	setupDarts  = buildSetupDarts()
	finishDarts = buildFinishDarts()
)

// buildSetupDarts orders non-finishing darts: trebles high to low, the
// outer bull, then singles.
func buildSetupDarts() []Throw {
	out := make([]Throw, 0, 2*MaxFace+1)
	for f := MaxFace; f >= 1; f-- {
		out = append(out, Throw{Face: f, Multiplier: Triple})
	}
	out = append(out, Throw{Face: BullFace, Multiplier: Single})
	for f := MaxFace; f >= 1; f-- {
		out = append(out, Throw{Face: f, Multiplier: Single})
	}
	return out
}

func buildFinishDarts() []Throw {
	out := make([]Throw, 0, len(preferredDoubles)+1)
	for _, f := range preferredDoubles {
		out = append(out, Throw{Face: f, Multiplier: Double})
	}
	return append(out, Throw{Face: BullFace, Multiplier: Double})
}

// SuggestCheckout returns a shortest sequence of at most dartsLeft darts
// that finishes remaining exactly, ending on a double when doubleOut is set.
// It reports false when no such sequence exists.
func SuggestCheckout(remaining, dartsLeft int, doubleOut bool) ([]Throw, bool) {
	if remaining <= 0 || dartsLeft <= 0 {
		return nil, false
	}
	if dartsLeft > MaxThrowsPerVisit {
		dartsLeft = MaxThrowsPerVisit
	}
	if doubleOut && (remaining < 2 || remaining > MaxCheckout) {
		return nil, false
	}

	finishers := finishDarts
	if !doubleOut {
		finishers = append(append([]Throw(nil), finishDarts...), setupDarts...)
	}

	for n := 1; n <= dartsLeft; n++ {
		for _, last := range finishers {
			need := remaining - last.Points()
			if need < 0 {
				continue
			}
			if setup, ok := findSetup(need, n-1); ok {
				return append(setup, last), true
			}
		}
	}
	return nil, false
}

// findSetup finds exactly darts setup darts summing to need.
func findSetup(need, darts int) ([]Throw, bool) {
	if darts == 0 {
		return []Throw{}, need == 0
	}
	for _, t := range setupDarts {
		rest := need - t.Points()
		if rest < 0 {
			continue
		}
		if tail, ok := findSetup(rest, darts-1); ok {
			return append([]Throw{t}, tail...), true
		}
	}
	return nil, false
}
