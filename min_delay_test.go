package authflow

import (
	"errors"
	"testing"
	"time"
)

func TestMinDelayCallHoldsFastResult(t *testing.T) {
	floor := 80 * time.Millisecond

	start := time.Now()
	value, err := minDelayCall(floor, func() (int, error) {
		return 42, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("minDelayCall failed: %v", err)
	}
	if value != 42 {
		t.Fatalf("value = %d, want 42", value)
	}
	if elapsed < floor {
		t.Fatalf("returned after %v, want at least %v", elapsed, floor)
	}
}

func TestMinDelayCallSlowOpDominates(t *testing.T) {
	floor := 20 * time.Millisecond
	opLatency := 90 * time.Millisecond

	start := time.Now()
	_, err := minDelayCall(floor, func() (string, error) {
		time.Sleep(opLatency)
		return "ok", nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("minDelayCall failed: %v", err)
	}
	if elapsed < opLatency {
		t.Fatalf("returned after %v, want at least %v", elapsed, opLatency)
	}
	// The floor must not add on top of a slower op.
	if elapsed > opLatency+60*time.Millisecond {
		t.Fatalf("returned after %v, want close to %v", elapsed, opLatency)
	}
}

func TestMinDelayCallErrorsRespectFloor(t *testing.T) {
	floor := 60 * time.Millisecond
	boom := errors.New("boom")

	start := time.Now()
	_, err := minDelayCall(floor, func() (int, error) {
		return 0, boom
	})
	elapsed := time.Since(start)

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if elapsed < floor {
		t.Fatalf("error surfaced after %v, want at least %v", elapsed, floor)
	}
}

func TestMinDelayCallZeroFloor(t *testing.T) {
	start := time.Now()
	value, err := minDelayCall(0, func() (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("minDelayCall failed: %v", err)
	}
	if value != 7 {
		t.Fatalf("value = %d, want 7", value)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("zero floor took %v", elapsed)
	}
}
