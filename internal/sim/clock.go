package sim

import "time"

// ScaleInterval returns the wall-clock wait for one simulated tick at the
// given speed multiplier. Multiplier 1 is real time, 10 is ten times
// faster, 0 means no pacing at all.
func ScaleInterval(interval time.Duration, speed float64) time.Duration {
	if interval <= 0 || speed <= 0 {
		return 0
	}
	return time.Duration(float64(interval) / speed)
}
