package inference

import (
	"context"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/automlhq/tabular/pkg/errors"
)

// ortEnv manages process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libraryPath string) error {
	ortEnv.once.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// BlobGetter fetches a model artifact by path. Satisfied by the blob
// store.
type BlobGetter interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// ONNXLoader builds a Loader that fetches a compiled ONNX artifact from
// blobs, stages it on local disk, and opens an inference session over it.
// pathFor maps a model id to its artifact path; libraryPath locates the
// ONNX Runtime shared library (empty means the platform default).
func ONNXLoader(blobs BlobGetter, pathFor func(modelID string) string, libraryPath string) Loader {
	return func(ctx context.Context, modelID string) (Handle, error) {
		data, err := blobs.Get(ctx, pathFor(modelID))
		if err != nil {
			return nil, errors.Wrapf(err, "fetch model artifact for %s", modelID)
		}
		return newONNXHandle(data, libraryPath)
	}
}

// onnxHandle runs a staged ONNX model. The session is guarded by a mutex;
// the runtime does not promise concurrent Run safety on one session.
type onnxHandle struct {
	mu       sync.Mutex
	session  *ort.DynamicAdvancedSession
	tmpPath  string
	dtype    DType
	inputLen int // 0 when the model declares a dynamic feature axis
	outputs  int
	hasProbs bool
}

func newONNXHandle(artifact []byte, libraryPath string) (*onnxHandle, error) {
	if err := initORT(libraryPath); err != nil {
		return nil, errors.Wrap(err, "initialize onnx runtime")
	}

	// The runtime only opens models from a path, so stage the artifact in
	// a temp file that lives as long as the handle.
	tmp, err := os.CreateTemp("", "model-*.onnx")
	if err != nil {
		return nil, errors.Wrap(err, "stage model artifact")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(artifact); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "stage model artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "stage model artifact")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "read model description")
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		os.Remove(tmpPath)
		return nil, errors.New("model declares no input or output tensors")
	}

	h := &onnxHandle{tmpPath: tmpPath, dtype: Float32, outputs: len(outputs)}
	if inputs[0].DataType == ort.TensorElementDataTypeDouble {
		h.dtype = Float64
	}
	if dims := inputs[0].Dimensions; len(dims) == 2 && dims[1] > 0 {
		h.inputLen = int(dims[1])
	}
	// A second output carries per-class probabilities, aligned by class
	// index. This is resolved here, once, from the model description.
	// Exporters that emit the probabilities as a sequence of maps instead
	// of a tensor (zipmap-style) are detected now rather than failing
	// quietly on every prediction.
	if len(outputs) > 1 {
		if probTensor(outputs[1]) {
			h.hasProbs = true
		} else {
			slog.Warn("model probability output is not a float tensor, probabilities unavailable",
				"output", outputs[1].Name,
			)
		}
	}

	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "create session options")
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		tmpPath,
		[]string{inputs[0].Name},
		outputNames,
		opts,
	)
	if err != nil {
		os.Remove(tmpPath)
		return nil, errors.Wrap(err, "open inference session")
	}
	h.session = session
	return h, nil
}

func (h *onnxHandle) InputDType() DType {
	return h.dtype
}

func (h *onnxHandle) Run(ctx context.Context, in *Vector) (*RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(in.Values)
	if h.inputLen > 0 && n != h.inputLen {
		return nil, errors.NewDimensionError("onnx.Run", h.inputLen, n, 1)
	}

	input, err := h.newInputTensor(in.Values)
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	defer input.Destroy()

	outputs := make([]ort.Value, h.outputs)
	h.mu.Lock()
	err = h.session.Run([]ort.Value{input}, outputs)
	h.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "run model")
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	pred, err := tensorScalar(outputs[0])
	if err != nil {
		return nil, err
	}
	out := &RawOutput{Prediction: pred}
	if h.hasProbs && len(outputs) > 1 && outputs[1] != nil {
		if probs, err := tensorFloats(outputs[1]); err == nil && len(probs) > 0 {
			out.Probs = &ProbSet{Kind: ProbIndexedArray, Indexed: probs}
		}
	}
	return out, nil
}

func (h *onnxHandle) newInputTensor(values []float64) (ort.Value, error) {
	shape := ort.NewShape(1, int64(len(values)))
	if h.dtype == Float64 {
		data := make([]float64, len(values))
		copy(data, values)
		return ort.NewTensor(shape, data)
	}
	data := make([]float32, len(values))
	for i, v := range values {
		data[i] = float32(v)
	}
	return ort.NewTensor(shape, data)
}

func (h *onnxHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var err error
	if h.session != nil {
		err = h.session.Destroy()
		h.session = nil
	}
	if h.tmpPath != "" {
		os.Remove(h.tmpPath)
		h.tmpPath = ""
	}
	return err
}

// tensorScalar extracts the first element of a label or regression output
// tensor, whatever its element type.
func tensorScalar(v ort.Value) (float64, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		if data := t.GetData(); len(data) > 0 {
			return float64(data[0]), nil
		}
	case *ort.Tensor[float64]:
		if data := t.GetData(); len(data) > 0 {
			return data[0], nil
		}
	case *ort.Tensor[int64]:
		if data := t.GetData(); len(data) > 0 {
			return float64(data[0]), nil
		}
	case *ort.Tensor[int32]:
		if data := t.GetData(); len(data) > 0 {
			return float64(data[0]), nil
		}
	default:
		return 0, errors.Newf("unsupported output tensor type %T", v)
	}
	return 0, errors.New("empty output tensor")
}

// probTensor reports whether an output is a float tensor that tensorFloats
// can decode.
func probTensor(info ort.InputOutputInfo) bool {
	if info.OrtValueType != ort.ONNXTypeTensor {
		return false
	}
	return info.DataType == ort.TensorElementDataTypeFloat ||
		info.DataType == ort.TensorElementDataTypeDouble
}

// tensorFloats flattens a probability output tensor to float64.
func tensorFloats(v ort.Value) ([]float64, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		data := t.GetData()
		out := make([]float64, len(data))
		for i, x := range data {
			out[i] = float64(x)
		}
		return out, nil
	case *ort.Tensor[float64]:
		data := t.GetData()
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	default:
		return nil, errors.Newf("unsupported probability tensor type %T", v)
	}
}
