package domain

import "fmt"

// TurnResult is the outcome of evaluating one visit against a score.
type TurnResult struct {
	ResultingScore int  `json:"resulting_score"`
	Bust           bool `json:"bust"`
	Finished       bool `json:"finished"`
	// CheckoutThrowIndex is the index of the finishing dart, or -1.
	CheckoutThrowIndex int `json:"checkout_throw_index"`
	// ThrowsUsed counts the darts processed, including a busting or finishing dart.
	ThrowsUsed int `json:"throws_used"`
	// Points is what the visit took off the score; zero on a bust.
	Points int `json:"points"`
}

// EvaluateTurn applies up to three darts to currentScore.
// Darts are processed in order and evaluation stops at the dart that busts
// or finishes. A bust restores currentScore. Under double-out a leg can only
// be finished on a double, and a remainder of 1 is a bust.
func EvaluateTurn(currentScore int, throws []Throw, doubleOut bool) (TurnResult, error) {
	if currentScore < 0 {
		return TurnResult{}, fmt.Errorf("%w: %d", ErrInvalidScore, currentScore)
	}
	if len(throws) > MaxThrowsPerVisit {
		return TurnResult{}, fmt.Errorf("%w: got %d", ErrTooManyThrows, len(throws))
	}
	for i, t := range throws {
		if err := t.Validate(); err != nil {
			return TurnResult{}, fmt.Errorf("dart %d: %w", i, err)
		}
	}

	score := currentScore
	res := TurnResult{ResultingScore: currentScore, CheckoutThrowIndex: -1}

	for i, t := range throws {
		res.ThrowsUsed = i + 1
		proposed := score - t.Points()

		switch {
		case proposed < 0, doubleOut && proposed == 1:
			return bust(res, currentScore), nil
		case proposed == 0:
			if doubleOut && !t.IsDouble() {
				return bust(res, currentScore), nil
			}
			res.ResultingScore = 0
			res.Finished = true
			res.CheckoutThrowIndex = i
			res.Points = currentScore
			return res, nil
		}
		score = proposed
	}

	res.ResultingScore = score
	res.Points = currentScore - score
	return res, nil
}

func bust(res TurnResult, startScore int) TurnResult {
	res.Bust = true
	res.ResultingScore = startScore
	res.Points = 0
	return res
}

