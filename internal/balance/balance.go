// Package balance corrects the training label skew. The survey outcome is
// heavily weighted toward the negative class; without correction a
// classifier defaults to the majority answer and scores high accuracy with
// near-zero recall on the minority class.
package balance

import (
	"math/rand"
)

// Oversample equalizes class counts by resampling minority rows with
// replacement until they match the majority count, then concatenating with
// the untouched majority rows and shuffling. It only duplicates existing
// rows; feature values are never modified or synthesized. This runs inside
// the training pipeline only and has no effect on inference.
func Oversample(X [][]float64, y []int, rng *rand.Rand) ([][]float64, []int) {
	var minority, majority []int
	for i, label := range y {
		if label == 1 {
			minority = append(minority, i)
		} else {
			majority = append(majority, i)
		}
	}

	// Keep the convention of the survey data: class 1 is the rare one.
	// If the labels happen to flip, swap so we always grow the smaller side.
	if len(minority) > len(majority) {
		minority, majority = majority, minority
	}

	balancedX := make([][]float64, 0, 2*len(majority))
	balancedY := make([]int, 0, 2*len(majority))

	for _, i := range majority {
		balancedX = append(balancedX, X[i])
		balancedY = append(balancedY, y[i])
	}

	// Every original minority row is kept, then extras are drawn with
	// replacement until counts are equal.
	for _, i := range minority {
		balancedX = append(balancedX, X[i])
		balancedY = append(balancedY, y[i])
	}
	for n := len(minority); n < len(majority); n++ {
		i := minority[rng.Intn(len(minority))]
		balancedX = append(balancedX, X[i])
		balancedY = append(balancedY, y[i])
	}

	shuffle(balancedX, balancedY, rng)
	return balancedX, balancedY
}

// shuffle permutes rows so that batch order carries no class signal into
// the fit.
func shuffle(X [][]float64, y []int, rng *rand.Rand) {
	rng.Shuffle(len(X), func(i, j int) {
		X[i], X[j] = X[j], X[i]
		y[i], y[j] = y[j], y[i]
	})
}
