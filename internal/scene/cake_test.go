package scene

import (
	"testing"
	"time"
)

func TestCakeTwoStep(t *testing.T) {
	var c Cake

	if c.Cut() {
		t.Fatal("cut before blowing out")
	}
	for i := 0; i < RequiredBlows; i++ {
		if !c.Blow() {
			t.Fatalf("blow %d not counted", i+1)
		}
	}
	if c.Blow() {
		t.Error("extra blow counted")
	}
	if !c.BlownOut() {
		t.Fatal("expected candles out")
	}
	if c.State().Completed {
		t.Fatal("blowing out alone must not complete the cake")
	}
	if !c.Cut() {
		t.Fatal("cut after blow-out refused")
	}
	if c.Cut() {
		t.Error("second cut reported completion again")
	}
	if s := c.State(); !s.Completed || s.Blows != RequiredBlows {
		t.Errorf("state = %+v", s)
	}
}

func TestCakeWish(t *testing.T) {
	var c Cake
	if c.MakeWish("early") {
		t.Error("wish accepted before blow-out")
	}
	for c.Blow() {
	}
	if c.MakeWish("   ") {
		t.Error("blank wish accepted")
	}
	if !c.MakeWish("  more trips  ") || c.State().Wish != "more trips" {
		t.Errorf("wish = %q", c.State().Wish)
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2025, 12, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		target    time.Time
		wantSecs  int
		wantParts []Part
		wantFinal bool
	}{
		{
			name:      "days away",
			target:    now.Add(26*time.Hour + 30*time.Second),
			wantSecs:  26*3600 + 30,
			wantParts: []Part{{"days", 1}, {"hours", 2}, {"seconds", 30}},
		},
		{
			name:      "final seconds round up",
			target:    now.Add(4200 * time.Millisecond),
			wantSecs:  5,
			wantParts: []Part{{"seconds", 5}},
			wantFinal: true,
		},
		{
			name:     "passed",
			target:   now.Add(-time.Minute),
			wantSecs: 0,
		},
		{
			name:     "unset",
			wantSecs: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Countdown{Target: tt.target}
			if got := c.Seconds(now); got != tt.wantSecs {
				t.Errorf("seconds = %d, want %d", got, tt.wantSecs)
			}
			got := c.Parts(now)
			if len(got) != len(tt.wantParts) {
				t.Fatalf("parts = %v, want %v", got, tt.wantParts)
			}
			for i := range got {
				if got[i] != tt.wantParts[i] {
					t.Errorf("parts = %v, want %v", got, tt.wantParts)
				}
			}
			if c.Final(now) != tt.wantFinal {
				t.Errorf("final = %v, want %v", c.Final(now), tt.wantFinal)
			}
		})
	}
}
