package domain

import (
	"reflect"
	"testing"
)

func TestSuggestCheckout(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		dartsLeft int
		doubleOut bool
		want      []string
	}{
		{"maximum checkout", 170, 3, true, []string{"T20", "T20", "DBULL"}},
		{"one dart double", 40, 3, true, []string{"D20"}},
		{"bull finish", 50, 3, true, []string{"DBULL"}},
		{"lowest double", 2, 1, true, []string{"D1"}},
		{"two dart ton", 100, 3, true, []string{"T20", "D20"}},
		{"odd needs a setup", 41, 2, true, []string{"S1", "D20"}},
		{"single out treble", 60, 1, false, []string{"T20"}},
		{"bogey number", 169, 3, true, nil},
		{"one is never finishable", 1, 3, true, nil},
		{"above the maximum", 171, 3, true, nil},
		{"not enough darts", 100, 1, true, nil},
		{"nothing left", 0, 3, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestCheckout(tt.remaining, tt.dartsLeft, tt.doubleOut)
			if ok != (tt.want != nil) {
				t.Fatalf("SuggestCheckout(%d) ok = %v, want %v", tt.remaining, ok, tt.want != nil)
			}
			var labels []string
			for _, d := range got {
				labels = append(labels, d.String())
			}
			if !reflect.DeepEqual(labels, tt.want) {
				t.Errorf("SuggestCheckout(%d) = %v, want %v", tt.remaining, labels, tt.want)
			}
		})
	}
}

func TestSuggestCheckoutAlwaysFinishes(t *testing.T) {
	for _, doubleOut := range []bool{true, false} {
		for remaining := 1; remaining <= 180; remaining++ {
			path, ok := SuggestCheckout(remaining, 3, doubleOut)
			if !ok {
				continue
			}
			res, err := EvaluateTurn(remaining, path, doubleOut)
			if err != nil {
				t.Fatalf("EvaluateTurn(%d, %v) error: %v", remaining, path, err)
			}
			if !res.Finished || res.ThrowsUsed != len(path) {
				t.Errorf("suggestion %v for %d (doubleOut=%v) does not finish: %+v", path, remaining, doubleOut, res)
			}
		}
	}

	// Every score up to the maximum checkout except the bogey numbers has a path.
	bogeys := map[int]bool{159: true, 162: true, 163: true, 165: true, 166: true, 168: true, 169: true}
	for remaining := 2; remaining <= MaxCheckout; remaining++ {
		if _, ok := SuggestCheckout(remaining, 3, true); ok == bogeys[remaining] {
			t.Errorf("SuggestCheckout(%d) ok = %v", remaining, ok)
		}
	}
}
