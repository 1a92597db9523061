package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var slept []time.Duration
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		Logger:      Discard(),
		sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: unexpected error %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestRetryWrapsLastError(t *testing.T) {
	boom := errors.New("boom")
	r := &RetryConfig{MaxAttempts: 2, Logger: Discard(), sleep: func(time.Duration) {}}

	err := r.Do("always-fails", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Do: got %v, want wrapped %v", err, boom)
	}
}

func TestRetryRunsAtLeastOnce(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 0, sleep: func(time.Duration) {}}
	calls := 0
	_ = r.Do("once", func() error { calls++; return errors.New("x") })
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}
