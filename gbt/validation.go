package gbt

import "math/rand"

// splitValidation partitions the n dataset rows into a training set and
// a held-out validation set of roughly validationRatio of n. A ratio of
// 0 (or less) trains on every row and reports no validation loss.
func splitValidation(n int, validationRatio float64, seed int64) (train, valid []int32) {
	if validationRatio <= 0 {
		train = make([]int32, n)
		for i := range train {
			train[i] = int32(i)
		}
		return train, nil
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	numValid := int(float64(n) * validationRatio)
	valid = make([]int32, numValid)
	for i := 0; i < numValid; i++ {
		valid[i] = int32(perm[i])
	}
	train = make([]int32, n-numValid)
	for i := numValid; i < n; i++ {
		train[i-numValid] = int32(perm[i])
	}
	return train, valid
}
