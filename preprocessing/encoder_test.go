package preprocessing

import (
	"reflect"
	"testing"
)

func TestLabelEncoderFirstSeenOrder(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"red", "blue", "red", "green", "blue"})

	wantClasses := []string{"red", "blue", "green"}
	if !reflect.DeepEqual(le.Classes, wantClasses) {
		t.Errorf("Classes = %v, want %v", le.Classes, wantClasses)
	}
	if got := le.NumClasses(); got != 3 {
		t.Errorf("NumClasses() = %d, want 3", got)
	}

	got := le.Transform([]string{"green", "red", "blue"})
	want := []int{2, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
}

func TestLabelEncoderUnknownValue(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"NY", "LA", "SF"})

	if got := le.Code("Chicago"); got != UnknownCode {
		t.Errorf("Code(unseen) = %d, want %d", got, UnknownCode)
	}

	got := le.Transform([]string{"LA", "Chicago", "NY"})
	want := []int{1, UnknownCode, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
}

func TestLabelEncoderInverse(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"cat", "dog", "bird"})

	for code, want := range le.Classes {
		got, ok := le.Inverse(code)
		if !ok || got != want {
			t.Errorf("Inverse(%d) = %q, %v, want %q, true", code, got, ok, want)
		}
	}
	if _, ok := le.Inverse(UnknownCode); ok {
		t.Error("Inverse(UnknownCode) should not resolve")
	}
	if _, ok := le.Inverse(3); ok {
		t.Error("Inverse(out of range) should not resolve")
	}
}

func TestLabelEncoderMappingIsCopy(t *testing.T) {
	le := NewLabelEncoder()
	le.Fit([]string{"a", "b"})

	m := le.Mapping()
	m["a"] = 99
	if le.Code("a") != 0 {
		t.Error("mutating Mapping() result changed encoder state")
	}
}
