package store

import (
	"testing"
	"time"
)

func TestSameDay(t *testing.T) {
	d1 := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	d1Later := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b *time.Time
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", &d1, nil, false},
		{"same day different time", &d1, &d1Later, true},
		{"different days", &d1, &d2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameDay(tt.a, tt.b); got != tt.want {
				t.Errorf("sameDay = %v, want %v", got, tt.want)
			}
		})
	}
}
