package rf

import "math/rand"

// bootstrapSample draws floor(n*ratio) rows (n when that is 0) with
// replacement from
// [0,n), returning the drawn multiset (duplicates included, as CART
// splitting only cares about row membership, not multiplicity weighting)
// and the set of rows never drawn — the out-of-bag rows this tree can
// be evaluated against without contaminating its own training fit.
func bootstrapSample(rng *rand.Rand, n int, ratio float64) (sample, oob []int32) {
	size := int(float64(n) * ratio)
	if size <= 0 {
		size = n
	}
	drawn := make([]bool, n)
	sample = make([]int32, size)
	for i := 0; i < size; i++ {
		row := rng.Intn(n)
		sample[i] = int32(row)
		drawn[row] = true
	}
	for i, d := range drawn {
		if !d {
			oob = append(oob, int32(i))
		}
	}
	return sample, oob
}
