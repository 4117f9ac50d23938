// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package speed turns a captured acceleration window into a punch speed.
package speed

const (
	// WindowSize is the number of samples captured per punch.
	WindowSize = 1000
	// IntervalMillis is the sampling period.
	IntervalMillis = 1

	gravity   = 9.81
	msToKmh   = 3.6
	intervalS = float32(IntervalMillis) * 0.001
)

// Window holds one capture, in g, positive in the punch direction.
type Window [WindowSize]float32

// Estimate returns the peak punch speed in km/h.
//
// Only positive samples count: they are averaged and the average is held
// for count sampling intervals, so v = avg * g * count * dt. Negative and
// zero samples (recoil, rest) are dropped. With no positive sample the
// result is 0.
func Estimate(w *Window) float32 {
	var sum float32
	count := 0
	for _, a := range w {
		if a > 0 {
			sum += a
			count++
		}
	}
	if count == 0 {
		return 0
	}

	avg := sum / float32(count)
	elapsed := float32(count) * intervalS
	velocity := avg * gravity * elapsed
	return velocity * msToKmh
}
