package train

import "math"

// DefaultWarmup is the Noam schedule warmup length in optimizer steps.
const DefaultWarmup = 4000

// NoamLR computes the warmup-then-decay learning rate for a global step:
//
//	lr = initLR * sqrt(warmup) * min(step * warmup^-1.5, step^-0.5)
//
// The rate rises linearly through the warmup then decays with the inverse
// square root of the step. Steps are 1-indexed and strictly increasing
// across the whole run; callers must increment before the first use, the
// schedule is undefined at step 0.
func NoamLR(initLR float64, step, warmup int) float64 {
	s := float64(step)
	w := float64(warmup)
	return initLR * math.Sqrt(w) * math.Min(s*math.Pow(w, -1.5), 1/math.Sqrt(s))
}
