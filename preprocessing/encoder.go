package preprocessing

// UnknownCode is the sentinel for values never observed during fitting.
// Unknown categories are a data imperfection, not an error: lookups for
// them succeed and return this code.
const UnknownCode = -1

// LabelEncoder maps distinct string values to dense non-negative integer
// codes, assigned in first-seen order at fit time. Fields are exported for
// gob persistence of a fitted preprocessor.
type LabelEncoder struct {
	// Classes holds the original values in code order: Classes[code] is
	// the value that encodes to code.
	Classes []string
	// Codes is the forward mapping from value to code.
	Codes map[string]int
}

// NewLabelEncoder creates an empty, unfitted encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{Codes: make(map[string]int)}
}

// Fit assigns dense codes to the distinct values in first-seen order,
// replacing any previous fit.
func (le *LabelEncoder) Fit(values []string) {
	le.Classes = le.Classes[:0]
	le.Codes = make(map[string]int)
	for _, v := range values {
		if _, seen := le.Codes[v]; !seen {
			le.Codes[v] = len(le.Classes)
			le.Classes = append(le.Classes, v)
		}
	}
}

// Code returns the code for v, or UnknownCode if v was not seen at fit
// time. Never fails.
func (le *LabelEncoder) Code(v string) int {
	if code, ok := le.Codes[v]; ok {
		return code
	}
	return UnknownCode
}

// Transform encodes values using the fitted vocabulary. Unseen values
// encode to UnknownCode.
func (le *LabelEncoder) Transform(values []string) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = le.Code(v)
	}
	return out
}

// Inverse returns the original value for a code. The second return is
// false for UnknownCode or any code outside the fitted range.
func (le *LabelEncoder) Inverse(code int) (string, bool) {
	if code < 0 || code >= len(le.Classes) {
		return "", false
	}
	return le.Classes[code], true
}

// Mapping returns a copy of the value-to-code table, as flattened into the
// preprocessing contract.
func (le *LabelEncoder) Mapping() map[string]int {
	out := make(map[string]int, len(le.Codes))
	for v, code := range le.Codes {
		out[v] = code
	}
	return out
}

// NumClasses returns the number of distinct values seen at fit time.
func (le *LabelEncoder) NumClasses() int {
	return len(le.Classes)
}
