package helpers

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "", want: time.Minute},
		{in: "15s", want: 15 * time.Second},
		{in: "2h", want: 2 * time.Hour},
		{in: "later", want: time.Minute},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in, time.Minute); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
