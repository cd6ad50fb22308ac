package inference

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/automlhq/tabular/pkg/errors"
	"github.com/automlhq/tabular/pkg/log"
	"github.com/automlhq/tabular/preprocessing"
	"github.com/automlhq/tabular/table"
)

// ModelMeta is the prediction-time configuration of one deployed model:
// its preprocessing contract, detected problem type, and deployment state.
type ModelMeta struct {
	Contract    *preprocessing.Contract
	ProblemType preprocessing.ProblemType
	Deployed    bool
}

// MetaSource resolves a model id to its metadata. Implementations return
// ErrJobNotFound for unknown ids, which the engine reports as
// NotConfigured; any other failure is treated as a metadata-store fault
// and passed through.
type MetaSource interface {
	ModelMeta(ctx context.Context, modelID string) (*ModelMeta, error)
}

// PredictionResult is the decoded output of one prediction. Prediction is
// a float64 for regression and for classification without a target
// mapping, and the original label string when a mapping exists.
type PredictionResult struct {
	Prediction    interface{}               `json:"prediction"`
	Probability   float64                   `json:"probability,omitempty"`
	Probabilities map[string]float64        `json:"probabilities,omitempty"`
	ProblemType   preprocessing.ProblemType `json:"problem_type"`
}

// PredictionInfo describes the inputs a model expects, derived purely from
// its contract. Callers use it to build input forms.
type PredictionInfo struct {
	FeatureColumns    []string                             `json:"feature_columns"`
	FeatureTypes      map[string]preprocessing.FeatureType `json:"feature_types"`
	CategoricalValues map[string][]string                  `json:"categorical_values"`
}

// Engine executes predictions: it gates on model metadata, replays the
// contract's encoding over raw feature maps, runs the cached model handle,
// and decodes the output by problem type. An Engine is safe for concurrent
// use; the cache is its only shared mutable state.
type Engine struct {
	meta   MetaSource
	cache  *ModelCache
	loader Loader
}

// NewEngine wires an engine from its collaborators. The cache is shared
// across all predictions of one process; construct it once at startup.
func NewEngine(meta MetaSource, cache *ModelCache, loader Loader) *Engine {
	return &Engine{meta: meta, cache: cache, loader: loader}
}

// Predict runs one prediction for modelID over a raw feature map.
//
// Preconditions are checked in order, each with a distinct failure: a
// deployed contract must exist (NotConfigured), every contract feature must
// be present in raw (MissingFeatures, reporting all absent names at once),
// and the model handle must be obtainable (ModelUnavailable). During
// vector assembly an unknown category encodes to -1 and is never an
// error, while a non-coercible numeric value is (InvalidFeatureValue).
//
// Predict is read-only apart from populating the model cache: repeated
// calls with identical input yield identical results.
func (e *Engine) Predict(ctx context.Context, modelID string, raw map[string]interface{}) (*PredictionResult, error) {
	meta, err := e.modelMeta(ctx, modelID)
	if err != nil {
		return nil, err
	}
	contract := meta.Contract

	var missing []string
	for _, name := range contract.FeatureColumns {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingFeaturesError(modelID, missing)
	}

	handle, hit, err := e.cache.GetOrLoad(ctx, modelID, e.loader)
	if err != nil {
		return nil, err
	}

	vec, err := assembleVector(contract, raw)
	if err != nil {
		return nil, err
	}

	out, err := handle.Run(ctx, vec)
	if err != nil {
		return nil, errors.NewModelUnavailableError(modelID, err)
	}

	res := decode(contract, meta.ProblemType, out)
	slog.Debug("prediction served",
		log.OperationKey, "predict",
		log.ModelIDKey, modelID,
		log.ProblemTypeKey, string(meta.ProblemType),
		log.CacheHitKey, hit,
	)
	return res, nil
}

// PredictionInfo reports the feature layout a model expects. Fails with
// NotConfigured when no deployed contract exists.
func (e *Engine) PredictionInfo(ctx context.Context, modelID string) (*PredictionInfo, error) {
	meta, err := e.modelMeta(ctx, modelID)
	if err != nil {
		return nil, err
	}
	contract := meta.Contract

	info := &PredictionInfo{
		FeatureColumns:    append([]string(nil), contract.FeatureColumns...),
		FeatureTypes:      make(map[string]preprocessing.FeatureType, len(contract.FeatureTypes)),
		CategoricalValues: make(map[string][]string),
	}
	for name, ft := range contract.FeatureTypes {
		info.FeatureTypes[name] = ft
	}
	for _, name := range contract.FeatureColumns {
		if contract.IsCategorical(name) {
			info.CategoricalValues[name] = contract.AllowedValues(name)
		}
	}
	return info, nil
}

// modelMeta resolves a deployed model's metadata. A missing record, an
// undeployed model, and a missing contract are all NotConfigured; any
// other lookup failure is a service-side fault and passes through, so
// callers can tell bad input apart from an unhealthy metadata store.
func (e *Engine) modelMeta(ctx context.Context, modelID string) (*ModelMeta, error) {
	meta, err := e.meta.ModelMeta(ctx, modelID)
	if err != nil {
		if errors.Is(err, errors.ErrJobNotFound) {
			return nil, errors.NewNotConfiguredError(modelID)
		}
		return nil, errors.Wrapf(err, "load metadata for model %s", modelID)
	}
	if meta == nil || !meta.Deployed || meta.Contract == nil {
		return nil, errors.NewNotConfiguredError(modelID)
	}
	return meta, nil
}

// assembleVector encodes a raw feature map into the ordered numeric vector
// the model expects. Element order exactly follows feature_columns.
func assembleVector(contract *preprocessing.Contract, raw map[string]interface{}) (*Vector, error) {
	values := make([]float64, len(contract.FeatureColumns))
	for i, name := range contract.FeatureColumns {
		v := raw[name]
		if contract.IsCategorical(name) {
			code := preprocessing.UnknownCode
			if c, ok := contract.CategoricalMappings[name][coerceString(v)]; ok {
				code = c
			}
			values[i] = float64(code)
			continue
		}
		f, ok := coerceFloat(v)
		if !ok {
			return nil, errors.NewInvalidFeatureValueError(name, v)
		}
		values[i] = f
	}
	return &Vector{Values: values}, nil
}

// decode translates a raw model output into the caller-facing result.
func decode(contract *preprocessing.Contract, problemType preprocessing.ProblemType, out *RawOutput) *PredictionResult {
	res := &PredictionResult{ProblemType: problemType}
	if problemType != preprocessing.ProblemClassification {
		res.Prediction = out.Prediction
		return res
	}

	code := int(math.Round(out.Prediction))
	if label, ok := contract.TargetLabel(code); ok {
		res.Prediction = label
	} else {
		res.Prediction = float64(code)
	}

	if probs := normalizeProbs(contract, out.Probs); len(probs) > 0 {
		res.Probabilities = probs
		for _, p := range probs {
			if p > res.Probability {
				res.Probability = p
			}
		}
	}
	return res
}

// normalizeProbs flattens either probability shape into a label-keyed map.
// Class keys and indices translate through the target mapping when one
// exists, otherwise they stay as the string form of the encoded class.
func normalizeProbs(contract *preprocessing.Contract, probs *ProbSet) map[string]float64 {
	if probs == nil || probs.Kind == ProbNone {
		return nil
	}
	out := make(map[string]float64)
	switch probs.Kind {
	case ProbPerClassMap:
		for key, p := range probs.PerClass {
			label := key
			if code, err := strconv.Atoi(key); err == nil {
				if l, ok := contract.TargetLabel(code); ok {
					label = l
				}
			}
			out[label] = p
		}
	case ProbIndexedArray:
		for i, p := range probs.Indexed {
			label := strconv.Itoa(i)
			if l, ok := contract.TargetLabel(i); ok {
				label = l
			}
			out[label] = p
		}
	}
	return out
}

// coerceFloat turns a raw feature value into a number. Strings parse,
// booleans map to 0/1; anything else fails.
func coerceFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceString renders a raw value the way fit-time encoding did, so
// numeric-looking categories match their stored keys.
func coerceString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return table.FormatFloat(x)
	case float32:
		return table.FormatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return ""
	}
}
