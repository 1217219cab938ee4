package model

import (
	"testing"
)

func TestLocation_DistanceSquared(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want int64
	}{
		{name: "same point", a: NewLocation(3, 4), b: NewLocation(3, 4), want: 0},
		{name: "axis", a: NewLocation(0, 0), b: NewLocation(5, 0), want: 25},
		{name: "diagonal", a: NewLocation(0, 0), b: NewLocation(3, 4), want: 25},
		{name: "negative", a: NewLocation(-2, -2), b: NewLocation(1, 2), want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.DistanceSquared(tt.b); got != tt.want {
				t.Errorf("DistanceSquared() = %d, want %d", got, tt.want)
			}
			if got := tt.b.DistanceSquared(tt.a); got != tt.want {
				t.Errorf("DistanceSquared() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocation_Chebyshev(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want int32
	}{
		{name: "adjacent diagonal", a: NewLocation(0, 0), b: NewLocation(1, 1), want: 1},
		{name: "long axis wins", a: NewLocation(0, 0), b: NewLocation(2, 5), want: 5},
		{name: "negative", a: NewLocation(-3, 0), b: NewLocation(0, 1), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Chebyshev(tt.b); got != tt.want {
				t.Errorf("Chebyshev() = %d, want %d", got, tt.want)
			}
		})
	}
}
