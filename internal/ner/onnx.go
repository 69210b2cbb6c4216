package ner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/leakshield/leakshield/internal/pii"
)

const defaultSeqLen = 256

// ONNXOptions configures the local token-classification recognizer.
type ONNXOptions struct {
	// ModelDir holds model.onnx (or model.int8.onnx), vocab.txt and
	// config.json with an id2label map.
	ModelDir     string
	SeqLen       int
	IntraThreads int
	InterThreads int
	Logger       *slog.Logger
}

// ONNX runs a BERT-style NER model through onnxruntime. A single session is
// shared and guarded by a mutex.
type ONNX struct {
	mu sync.Mutex

	modelPath string
	tokenizer *wordPiece
	labels    []string
	seqLen    int
	logger    *slog.Logger

	session   *ort.AdvancedSession
	inputIDs  *ort.Tensor[int64]
	attention *ort.Tensor[int64]
	tokenType *ort.Tensor[int64]
	output    *ort.Tensor[float32]
}

// NewONNX loads the model and allocates the session tensors.
func NewONNX(opts ONNXOptions) (*ONNX, error) {
	if strings.TrimSpace(opts.ModelDir) == "" {
		return nil, fmt.Errorf("%w: onnx model directory is not configured", ErrUnavailable)
	}
	if opts.SeqLen <= 0 {
		opts.SeqLen = defaultSeqLen
	}
	if opts.IntraThreads <= 0 {
		opts.IntraThreads = 1
	}
	if opts.InterThreads <= 0 {
		opts.InterThreads = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	modelPath := resolveModelPath(opts.ModelDir)
	if modelPath == "" {
		return nil, fmt.Errorf("%w: no model.onnx in %s", ErrUnavailable, opts.ModelDir)
	}
	meta, err := loadModelMeta(opts.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("load model config: %w", err)
	}
	if len(meta.labels) == 0 {
		return nil, fmt.Errorf("model config in %s has no id2label map", opts.ModelDir)
	}
	tokenizer, err := loadWordPiece(filepath.Join(opts.ModelDir, "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	libPath := resolveSharedLibraryPath(opts.ModelDir)
	if libPath == "" {
		return nil, fmt.Errorf("%w: onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH", ErrUnavailable)
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	o := &ONNX{
		modelPath: modelPath,
		tokenizer: tokenizer,
		labels:    meta.labels,
		seqLen:    opts.SeqLen,
		logger:    opts.Logger,
	}
	if err := o.newSession(meta.needsTokenType, opts.IntraThreads, opts.InterThreads); err != nil {
		return nil, err
	}
	opts.Logger.Debug("onnx recognizer loaded", "model", filepath.Base(modelPath), "labels", len(meta.labels), "seqLen", opts.SeqLen)
	return o, nil
}

func (o *ONNX) newSession(needsTokenType bool, intraThr, interThr int) error {
	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("create session options: %w", err)
	}
	defer sessOpts.Destroy()
	if err := sessOpts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return fmt.Errorf("set graph optimization: %w", err)
	}
	if err := sessOpts.SetIntraOpNumThreads(intraThr); err != nil {
		return fmt.Errorf("set intra threads: %w", err)
	}
	if err := sessOpts.SetInterOpNumThreads(interThr); err != nil {
		return fmt.Errorf("set inter threads: %w", err)
	}

	outputName, outputDims, err := selectOutput(o.modelPath)
	if err != nil {
		return fmt.Errorf("select model output: %w", err)
	}

	inputShape := ort.NewShape(1, int64(o.seqLen))
	if o.inputIDs, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		return fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	if o.attention, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		o.destroy()
		return fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	inputNames := []string{"input_ids", "attention_mask"}
	inputValues := []ort.Value{o.inputIDs, o.attention}
	if needsTokenType {
		if o.tokenType, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
			o.destroy()
			return fmt.Errorf("allocate token_type_ids tensor: %w", err)
		}
		inputNames = append(inputNames, "token_type_ids")
		inputValues = append(inputValues, o.tokenType)
	}
	if o.output, err = ort.NewEmptyTensor[float32](outputShape(outputDims, o.seqLen, len(o.labels))); err != nil {
		o.destroy()
		return fmt.Errorf("allocate output tensor: %w", err)
	}

	o.session, err = ort.NewAdvancedSession(o.modelPath, inputNames, []string{outputName},
		inputValues, []ort.Value{o.output}, sessOpts)
	if err != nil {
		o.destroy()
		return fmt.Errorf("create onnx session: %w", err)
	}
	return nil
}

func (o *ONNX) Name() string { return "onnx" }

// Model returns the base name of the loaded model file.
func (o *ONNX) Model() string { return filepath.Base(filepath.Dir(o.modelPath)) }

// Entities tokenizes text in seqLen windows and merges the BIO-tagged spans.
func (o *ONNX) Entities(ctx context.Context, text string) ([]pii.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, ErrUnavailable
	}

	words := splitWords(text)
	var all []pii.Entity
	for len(words) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ids, attn, offsets, n := o.tokenizer.encode(words, o.seqLen)
		words = words[n:]

		copy(o.inputIDs.GetData(), ids)
		copy(o.attention.GetData(), attn)
		if o.tokenType != nil {
			clear(o.tokenType.GetData())
		}
		if err := o.session.Run(); err != nil {
			return nil, fmt.Errorf("onnx run: %w", err)
		}
		labels := argmaxLabels(o.output.GetData(), o.labels, len(offsets))
		all = append(all, entitiesFromTokenLabels(labels, offsets)...)
	}

	merged := normalizeAll(mergeEntities(all))
	out := merged[:0]
	for _, e := range merged {
		if !validSpan(text, e.Start, e.End) {
			continue
		}
		e.Text = text[e.Start:e.End]
		out = append(out, e)
	}
	return out, nil
}

// Close releases the onnxruntime session and tensors.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.destroy()
	return nil
}

func (o *ONNX) destroy() {
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{o.inputIDs, o.attention, o.tokenType} {
		if t != nil {
			t.Destroy()
		}
	}
	if o.output != nil {
		o.output.Destroy()
	}
	o.inputIDs, o.attention, o.tokenType, o.output = nil, nil, nil, nil
}

// argmaxLabels picks the highest-scoring label for each of the first n tokens.
func argmaxLabels(logits []float32, labels []string, n int) []string {
	numLabels := len(labels)
	out := make([]string, n)
	if numLabels == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		base := i * numLabels
		if base+numLabels > len(logits) {
			break
		}
		best := 0
		bestScore := float32(-math.MaxFloat32)
		for j := 0; j < numLabels; j++ {
			if logits[base+j] > bestScore {
				best, bestScore = j, logits[base+j]
			}
		}
		out[i] = labels[best]
	}
	return out
}

// entitiesFromTokenLabels turns per-token BIO labels into entity spans with
// raw (unnormalized) labels.
func entitiesFromTokenLabels(labels []string, offsets []tokenOffset) []pii.Entity {
	var entities []pii.Entity
	var cur *pii.Entity

	for i, lbl := range labels {
		if i >= len(offsets) {
			break
		}
		off := offsets[i]
		if off.Start < 0 || off.End <= off.Start {
			continue
		}
		prefix, typ := splitLabel(lbl)
		if typ == "" || strings.EqualFold(lbl, "O") {
			if cur != nil {
				entities = append(entities, *cur)
				cur = nil
			}
			continue
		}
		if prefix == "B" || cur == nil || !strings.EqualFold(cur.Label, typ) {
			if cur != nil {
				entities = append(entities, *cur)
			}
			cur = &pii.Entity{Label: typ, Start: off.Start, End: off.End}
			continue
		}
		if off.End > cur.End {
			cur.End = off.End
		}
	}
	if cur != nil {
		entities = append(entities, *cur)
	}
	return entities
}

func splitLabel(lbl string) (string, string) {
	lbl = strings.TrimSpace(lbl)
	if lbl == "" {
		return "", ""
	}
	prefix, typ, ok := strings.Cut(lbl, "-")
	if !ok {
		return "", lbl
	}
	return prefix, typ
}

// mergeEntities sorts entities and joins overlapping or adjacent spans that
// share a label.
func mergeEntities(in []pii.Entity) []pii.Entity {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool {
		if in[i].Start == in[j].Start {
			return in[i].End < in[j].End
		}
		return in[i].Start < in[j].Start
	})
	out := make([]pii.Entity, 0, len(in))
	cur := in[0]
	for _, e := range in[1:] {
		if e.Start <= cur.End && strings.EqualFold(e.Label, cur.Label) {
			if e.End > cur.End {
				cur.End = e.End
			}
			continue
		}
		out = append(out, cur)
		cur = e
	}
	return append(out, cur)
}

type modelMeta struct {
	labels         []string
	needsTokenType bool
}

func loadModelMeta(dir string) (modelMeta, error) {
	var meta modelMeta
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return meta, err
	}
	var cfg struct {
		ID2Label      map[string]string `json:"id2label"`
		TypeVocabSize int               `json:"type_vocab_size"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return meta, err
	}
	meta.needsTokenType = cfg.TypeVocabSize > 0

	maxID := -1
	ids := make(map[int]string, len(cfg.ID2Label))
	for k, v := range cfg.ID2Label {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || id < 0 {
			continue
		}
		ids[id] = v
		maxID = max(maxID, id)
	}
	if maxID >= 0 {
		meta.labels = make([]string, maxID+1)
		for id, v := range ids {
			meta.labels[id] = v
		}
	}
	return meta, nil
}

func resolveModelPath(dir string) string {
	for _, name := range []string{"model.int8.onnx", "model.onnx"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// resolveSharedLibraryPath locates the onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common locations are probed.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}
	names := []string{"libonnxruntime.dylib", "libonnxruntime.so", "onnxruntime.dll"}
	dirs := []string{modelDir, filepath.Join(modelDir, "lib"), "/opt/homebrew/lib", "/usr/local/lib", "/usr/lib"}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func selectOutput(modelPath string) (string, []int64, error) {
	_, outputs, err := ort.GetInputOutputInfoWithOptions(modelPath, nil)
	if err != nil {
		return "", nil, err
	}
	if len(outputs) == 0 {
		return "", nil, errors.New("no outputs found")
	}
	for _, out := range outputs {
		if strings.EqualFold(out.Name, "logits") {
			return out.Name, out.Dimensions, nil
		}
	}
	return outputs[0].Name, outputs[0].Dimensions, nil
}

// outputShape fills dynamic dimensions of a [batch, seq, labels] output.
func outputShape(dims []int64, seqLen, numLabels int) ort.Shape {
	if len(dims) != 3 {
		return ort.NewShape(1, int64(seqLen), int64(numLabels))
	}
	shape := make([]int64, 3)
	copy(shape, dims)
	if shape[0] <= 0 {
		shape[0] = 1
	}
	if shape[1] <= 0 {
		shape[1] = int64(seqLen)
	}
	if shape[2] <= 0 {
		shape[2] = int64(numLabels)
	}
	return ort.Shape(shape)
}
