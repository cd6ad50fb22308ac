package preprocessing

import (
	"math"
	"math/rand"
	"sort"
)

// DefaultSeed fixes the train/test split so a fit is reproducible.
// Determinism here is a hard requirement: tests and retraining audits
// depend on identical partitions for identical inputs.
const DefaultSeed int64 = 42

// randomSplit partitions [0, n) into train and test index sets, holding
// out ceil(n * fraction) rows.
func randomSplit(n int, fraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	nTest := int(math.Ceil(float64(n) * fraction))
	if nTest > n {
		nTest = n
	}
	test = append(test, perm[:nTest]...)
	train = append(train, perm[nTest:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// stratifiedSplit partitions rows so each label value keeps roughly the
// same proportion in train and test. Groups too small to split (a single
// row) stay in the training partition; a degenerate single-class target is
// legal and must not fail.
func stratifiedSplit(labels []float64, fraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))

	splitGroup := func(idx []int) {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(math.Round(float64(len(idx)) * fraction))
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		if nTest < 0 {
			nTest = 0
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	// NaN never compares equal to a map key, so NaN labels are collected
	// explicitly; otherwise their rows would vanish from both partitions.
	groups := make(map[float64][]int)
	var order []float64
	var unlabeled []int
	for i, label := range labels {
		if math.IsNaN(label) {
			unlabeled = append(unlabeled, i)
			continue
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}
	// Iterate groups in first-seen order so the permutation sequence is
	// stable across runs.
	for _, label := range order {
		splitGroup(groups[label])
	}
	if len(unlabeled) > 0 {
		splitGroup(unlabeled)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// median returns the middle order statistic, averaging the two central
// values for even counts.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mode returns the most frequent value, breaking ties toward the
// lexicographically smallest so imputation is deterministic.
func mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := ""
	bestCount := -1
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best = v
			bestCount = n
		}
	}
	return best, true
}
