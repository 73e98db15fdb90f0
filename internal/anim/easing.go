package anim

import "math"

// Easing maps linear time t in [0,1] to animation progress in [0,1].
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

// EaseOutCubic decelerates toward the end; used for stroke reveals.
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutCubic accelerates then decelerates; used for camera pans.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
