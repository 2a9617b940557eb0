package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoamLRWarmupRisesThenDecays(t *testing.T) {
	const initLR = 1e-4
	const warmup = 100

	prev := NoamLR(initLR, 1, warmup)
	require.Greater(t, prev, 0.0)
	for step := 2; step <= warmup; step++ {
		lr := NoamLR(initLR, step, warmup)
		require.Greater(t, lr, prev, "step %d must rise during warmup", step)
		prev = lr
	}
	for step := warmup + 1; step <= 3*warmup; step++ {
		lr := NoamLR(initLR, step, warmup)
		require.Less(t, lr, prev, "step %d must decay after warmup", step)
		prev = lr
	}
}

func TestNoamLRInverseSquareRootDecay(t *testing.T) {
	const initLR = 1e-4
	const warmup = 100

	// past warmup the rate is initLR * sqrt(warmup / step)
	for _, step := range []int{101, 400, 10000} {
		want := initLR * math.Sqrt(float64(warmup)/float64(step))
		assert.InEpsilon(t, want, NoamLR(initLR, step, warmup), 1e-12)
	}
}

func TestNoamLRPeaksAtWarmup(t *testing.T) {
	const initLR = 2e-4
	const warmup = 4000

	peak := NoamLR(initLR, warmup, warmup)
	assert.Greater(t, peak, NoamLR(initLR, warmup-1, warmup))
	assert.Greater(t, peak, NoamLR(initLR, warmup+1, warmup))
	assert.InEpsilon(t, initLR, peak, 1e-12)
}
