package gbt

import "time"

// shouldStopOnLossIncrease implements the LOSS_INCREASE early-stopping
// policy: stop once validation loss has failed to improve on its best
// value for lookAhead consecutive iterations.
func shouldStopOnLossIncrease(history []float64, lookAhead int) bool {
	if lookAhead <= 0 {
		lookAhead = 1
	}
	if len(history) <= lookAhead {
		return false
	}
	best := history[0]
	bestAt := 0
	for i, v := range history {
		if v < best {
			best = v
			bestAt = i
		}
	}
	return len(history)-1-bestAt >= lookAhead
}

// adaptSubsample implements time-budget-adaptive subsampling: once the
// observed per-iteration pace projects past the deadline, the next
// iterations' sampling rate is reduced proportionally so the remaining
// iterations still fit.
func adaptSubsample(current float64, start time.Time, budget time.Duration, iterationsDone, iterationsTotal int) float64 {
	if iterationsDone == 0 || iterationsTotal <= iterationsDone {
		return current
	}
	elapsed := time.Since(start)
	perIteration := elapsed / time.Duration(iterationsDone)
	remaining := budget - elapsed
	remainingIterations := iterationsTotal - iterationsDone
	projected := perIteration * time.Duration(remainingIterations)
	if projected <= remaining || projected == 0 {
		return current
	}
	factor := float64(remaining) / float64(projected)
	next := current * factor
	if next <= 0 {
		next = 0.05
	}
	if next > 1 {
		next = 1
	}
	return next
}
