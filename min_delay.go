package authflow

import "time"

// minDelayCall runs op and an independent timer concurrently and returns op's
// result only after both have completed, so the total suspension time is at
// least floor even when op finishes instantly. It is not a timeout: op is
// never cancelled and its latency is never bounded. The floor also applies to
// failing calls: only the data path is special-cased, never the timing.
func minDelayCall[T any](floor time.Duration, op func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		value, err := op()
		done <- outcome{value: value, err: err}
	}()

	if floor <= 0 {
		out := <-done
		return out.value, out.err
	}

	timer := time.NewTimer(floor)
	defer timer.Stop()

	out := <-done
	<-timer.C
	return out.value, out.err
}
