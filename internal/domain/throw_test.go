package domain

import "testing"

func TestThrowPoints(t *testing.T) {
	tests := []struct {
		throw Throw
		want  int
		label string
	}{
		{throw: Throw{0, Single}, want: 0, label: "MISS"},
		{throw: Throw{1, Single}, want: 1, label: "S1"},
		{throw: Throw{20, Double}, want: 40, label: "D20"},
		{throw: Throw{20, Triple}, want: 60, label: "T20"},
		{throw: Throw{BullFace, Single}, want: 25, label: "BULL"},
		{throw: Throw{BullFace, Double}, want: 50, label: "DBULL"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := tt.throw.Points(); got != tt.want {
				t.Fatalf("Points() = %d, want %d", got, tt.want)
			}
			if got := tt.throw.String(); got != tt.label {
				t.Fatalf("String() = %s, want %s", got, tt.label)
			}
		})
	}
}

func TestThrowValidate(t *testing.T) {
	for face := 0; face <= MaxFace; face++ {
		for m := Single; m <= Triple; m++ {
			if err := (Throw{face, m}).Validate(); err != nil {
				t.Fatalf("Throw{%d,%d}.Validate() = %v", face, m, err)
			}
		}
	}
	for _, bad := range []Throw{{BullFace, Triple}, {21, Single}, {24, Single}, {26, Double}, {3, 0}, {3, 4}} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("Throw%+v.Validate() = nil, want error", bad)
		}
	}
}

func TestThrowIsDouble(t *testing.T) {
	if !(Throw{BullFace, Double}).IsDouble() {
		t.Fatalf("inner bull should count as a double")
	}
	if (Throw{BullFace, Single}).IsDouble() {
		t.Fatalf("outer bull should not count as a double")
	}
	if (Throw{20, Triple}).IsDouble() {
		t.Fatalf("treble should not count as a double")
	}
}
