package learned

import (
	"math"
	"sync/atomic"
)

// gapFactor implements spec §4.3's density table: larger subtrees get a
// tighter gap factor because their absolute slot count is already large
// enough to keep collisions rare.
func gapFactor(size int) int {
	switch {
	case size >= 1000000:
		return 1
	case size >= 100000:
		return 2
	default:
		return 5
	}
}

// fitTwoPoint computes a model from two (key, target-position) pairs; the
// two-key micro-node builder uses it to place its two keys.
func fitTwoPoint[K Numeric](k1 K, t1 float64, k2 K, t2 float64) linearModel {
	a := (t2 - t1) / (float64(k2) - float64(k1))
	b := t1 - a*float64(k1)
	return linearModel{a: a, b: b}
}

// threePointFit is spec §4.3's fallback: split the sorted keys at the 1/3
// and 2/3 marks and fit the line through their midpoints, targeting the
// center of each gap-expanded bucket.
func threePointFit[K Numeric](keys []K, gap int) (model linearModel, numItems int) {
	size := len(keys)
	m1 := (size - 1) / 3
	m2 := 2 * (size - 1) / 3
	k1 := (float64(keys[m1]) + float64(keys[m1+1])) / 2
	k2 := (float64(keys[m2]) + float64(keys[m2+1])) / 2

	step := gap + 1
	t1 := float64(m1*step) + float64(step)/2
	t2 := float64(m2*step) + float64(step)/2

	a := (t2 - t1) / (k2 - k1)
	b := t1 - a*k1
	return linearModel{a: a, b: b}, size * step
}

// fmcdStats mirrors the original's `stats.fmcd_success_times` /
// `stats.fmcd_broken_times` bookkeeping (see pkg/monitor/stats.go's atomic
// counter style in the teacher repo) so PrintStats can report fit quality.
type fmcdStats struct {
	successTimes atomic.Uint64
	brokenTimes  atomic.Uint64
}

// fmcdFit implements spec §4.3's "Fastest Minimum Conflict Degree" fit: grow
// a minimum pairwise gap D until every pair D apart is spread at least Ut
// apart in key-space, or give up ("broken") once 3*D exceeds size.
//
// On success it returns ok=true with a model whose slope is exactly 1/Ut.
// On failure the caller falls back to threePointFit.
func fmcdFit[K Numeric](keys []K, gap int) (model linearModel, numItems int, ok bool) {
	size := len(keys)
	step := gap + 1
	l := size * step

	d := 1
	if d > size-1-d {
		return linearModel{}, 0, false
	}
	ut := (float64(keys[size-1-d]) - float64(keys[d]))/float64(l-2) + 1e-6

	i := 0
	for i < size-1-d {
		for i+d < size && float64(keys[i+d])-float64(keys[i]) >= ut {
			i++
		}
		if i+d >= size {
			break
		}
		d++
		if d*3 > size {
			break
		}
		ut = (float64(keys[size-1-d]) - float64(keys[d]))/float64(l-2) + 1e-6
	}

	if d*3 > size {
		return linearModel{}, 0, false
	}

	a := 1.0 / ut
	b := (float64(l) - a*(float64(keys[size-1-d])+float64(keys[d]))) / 2
	return linearModel{a: a, b: b}, l, true
}

// applyBuildLRRemain pads a freshly fitted model symmetrically, per spec
// §4.3's "extra padding is added symmetrically by shifting b".
func applyBuildLRRemain(model linearModel, numItems, size int, buildLRRemain float64) (linearModel, int) {
	remain := int(float64(size) * buildLRRemain)
	model.b += float64(remain)
	return model, numItems + remain*2
}

func isFiniteModel(m linearModel) bool {
	return !math.IsInf(m.a, 0) && !math.IsNaN(m.a) && !math.IsInf(m.b, 0) && !math.IsNaN(m.b)
}
