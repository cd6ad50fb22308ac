package metrics

// Accuracy computes the fraction of exact label matches.
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// classCounts holds the per-class confusion tallies needed for weighted
// scores.
type classCounts struct {
	tp, fp, fn int
	support    int
}

func confusion(yTrue, yPred []float64) map[float64]*classCounts {
	counts := make(map[float64]*classCounts)
	get := func(label float64) *classCounts {
		c, ok := counts[label]
		if !ok {
			c = &classCounts{}
			counts[label] = c
		}
		return c
	}
	for i := range yTrue {
		truth, pred := yTrue[i], yPred[i]
		get(truth).support++
		if truth == pred {
			get(truth).tp++
		} else {
			get(pred).fp++
			get(truth).fn++
		}
	}
	return counts
}

// PrecisionWeighted computes precision per class and averages weighted by
// class support. Classes never predicted contribute zero precision.
func PrecisionWeighted(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("PrecisionWeighted", yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range confusion(yTrue, yPred) {
		if denom := c.tp + c.fp; denom > 0 {
			sum += float64(c.tp) / float64(denom) * float64(c.support)
		}
	}
	return sum / float64(len(yTrue)), nil
}

// RecallWeighted computes recall per class and averages weighted by class
// support.
func RecallWeighted(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("RecallWeighted", yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range confusion(yTrue, yPred) {
		if denom := c.tp + c.fn; denom > 0 {
			sum += float64(c.tp) / float64(denom) * float64(c.support)
		}
	}
	return sum / float64(len(yTrue)), nil
}

// F1Weighted computes the per-class harmonic mean of precision and recall,
// averaged weighted by class support. Classes where both are zero
// contribute zero.
func F1Weighted(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("F1Weighted", yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range confusion(yTrue, yPred) {
		var precision, recall float64
		if denom := c.tp + c.fp; denom > 0 {
			precision = float64(c.tp) / float64(denom)
		}
		if denom := c.tp + c.fn; denom > 0 {
			recall = float64(c.tp) / float64(denom)
		}
		if precision+recall > 0 {
			f1 := 2 * precision * recall / (precision + recall)
			sum += f1 * float64(c.support)
		}
	}
	return sum / float64(len(yTrue)), nil
}
