package preprocessing

import (
	"math"
	"reflect"
	"sort"
	"testing"
)

func TestRandomSplitDeterministic(t *testing.T) {
	train1, test1 := randomSplit(100, 0.2, DefaultSeed)
	train2, test2 := randomSplit(100, 0.2, DefaultSeed)

	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Error("randomSplit with identical seeds produced different partitions")
	}
	if len(test1) != 20 || len(train1) != 80 {
		t.Errorf("partition sizes = %d/%d, want 80/20", len(train1), len(test1))
	}

	all := append(append([]int(nil), train1...), test1...)
	sort.Ints(all)
	for i, v := range all {
		if v != i {
			t.Fatalf("partition is not a permutation of [0, 100): index %d holds %d", i, v)
		}
	}
}

func TestRandomSplitHoldsOutAtLeastOneRow(t *testing.T) {
	train, test := randomSplit(3, 0.2, DefaultSeed)
	if len(test) != 1 || len(train) != 2 {
		t.Errorf("partition sizes = %d/%d, want 2/1", len(train), len(test))
	}
}

func TestStratifiedSplitKeepsProportions(t *testing.T) {
	labels := make([]float64, 100)
	for i := 80; i < 100; i++ {
		labels[i] = 1
	}

	train, test := stratifiedSplit(labels, 0.2, DefaultSeed)
	if len(train)+len(test) != 100 {
		t.Fatalf("partitions cover %d rows, want 100", len(train)+len(test))
	}

	count := func(idx []int, label float64) int {
		n := 0
		for _, i := range idx {
			if labels[i] == label {
				n++
			}
		}
		return n
	}
	if got := count(test, 0); got != 16 {
		t.Errorf("majority class test rows = %d, want 16", got)
	}
	if got := count(test, 1); got != 4 {
		t.Errorf("minority class test rows = %d, want 4", got)
	}
}

func TestStratifiedSplitSingleRowGroupStaysInTrain(t *testing.T) {
	labels := []float64{0, 0, 0, 0, 1}
	train, test := stratifiedSplit(labels, 0.2, DefaultSeed)

	for _, i := range test {
		if labels[i] == 1 {
			t.Error("single-row class leaked into the test partition")
		}
	}
	found := false
	for _, i := range train {
		if labels[i] == 1 {
			found = true
		}
	}
	if !found {
		t.Error("single-row class missing from the training partition")
	}
}

func TestStratifiedSplitRetainsUnlabeledRows(t *testing.T) {
	nan := math.NaN()
	labels := []float64{0, 1, 0, 1, nan, nan}

	train, test := stratifiedSplit(labels, 0.5, DefaultSeed)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	if len(all) != len(labels) {
		t.Fatalf("partitions cover %d rows, want %d", len(all), len(labels))
	}
	for i, v := range all {
		if v != i {
			t.Fatalf("partition is not a permutation of [0, %d): index %d holds %d", len(labels), i, v)
		}
	}
}

func TestStratifiedSplitSingleClass(t *testing.T) {
	labels := []float64{1, 1, 1, 1, 1}
	train, test := stratifiedSplit(labels, 0.2, DefaultSeed)
	if len(train)+len(test) != 5 {
		t.Errorf("partitions cover %d rows, want 5", len(train)+len(test))
	}
	if len(train) == 0 {
		t.Error("training partition is empty for a single-class target")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "odd count", values: []float64{5, 1, 3}, want: 3},
		{name: "even count", values: []float64{4, 1, 3, 2}, want: 2.5},
		{name: "single", values: []float64{7}, want: 7},
		{name: "empty", values: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("median() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
		wantOK bool
	}{
		{name: "clear winner", values: []string{"b", "a", "b"}, want: "b", wantOK: true},
		{name: "tie breaks low", values: []string{"b", "a", "a", "b"}, want: "a", wantOK: true},
		{name: "empty", values: nil, want: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mode(tt.values)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("mode() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
