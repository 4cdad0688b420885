package ratelimit

import "testing"

func TestAllowRequestMinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 100, true)

	for i := 0; i < 3; i++ {
		if !rl.AllowRequest() {
			t.Fatalf("request %d rejected before the limit", i+1)
		}
	}
	if rl.AllowRequest() {
		t.Errorf("request allowed past the per-minute limit")
	}
}

func TestAllowRequestDisabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)

	for i := 0; i < 10; i++ {
		if !rl.AllowRequest() {
			t.Fatalf("disabled limiter rejected request %d", i+1)
		}
	}
	if stats := rl.GetStats(); stats.Enabled {
		t.Errorf("disabled limiter reports enabled stats")
	}
}

func TestStatsAndReset(t *testing.T) {
	rl := NewRateLimiter(5, 10, true)

	rl.AllowRequest()
	rl.AllowRequest()

	stats := rl.GetStats()
	if stats.RequestsLastMinute != 2 || stats.RemainingThisMinute != 3 {
		t.Errorf("stats = %+v, want 2 used, 3 remaining this minute", stats)
	}
	if stats.RequestsLastHour != 2 || stats.RemainingThisHour != 8 {
		t.Errorf("stats = %+v, want 2 used, 8 remaining this hour", stats)
	}

	rl.Reset()
	if stats := rl.GetStats(); stats.RequestsLastMinute != 0 {
		t.Errorf("Reset did not clear the windows: %+v", stats)
	}
}
