package onnx

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model wraps one ONNX phishing-classification session. Inference is
// serialized with a mutex because the session owns fixed input/output
// tensors.
type Model struct {
	session   *ort.AdvancedSession
	tokenizer *wordPieceTokenizer
	seqLen    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// LoadModel initializes the ONNX session and tokenizer from a bundle
// directory containing model.onnx and vocab.txt. This is the one-time,
// possibly multi-second load the readiness gate reflects.
func LoadModel(bundleDir string, seqLen int) (*Model, error) {
	if bundleDir == "" {
		return nil, errors.New("bundle dir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}

	if libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(bundleDir, "model.onnx")
	vocabPath := filepath.Join(bundleDir, "vocab.txt")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	tokenizer, err := loadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	// Binary classifier: logits for [legitimate, phishing]
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:       session,
		tokenizer:     tokenizer,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Score runs inference and returns the phishing-class probability
func (m *Model) Score(text string) (float64, error) {
	if m == nil || m.session == nil {
		return 0, errors.New("onnx model not initialized")
	}

	inputIDs, attn := m.tokenizer.encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}

	logits := m.output.GetData()
	if len(logits) < 2 {
		return 0, fmt.Errorf("unexpected logits shape: %d values", len(logits))
	}

	// Softmax over the two classes
	max := logits[0]
	if logits[1] > max {
		max = logits[1]
	}
	legit := math.Exp(float64(logits[0] - max))
	phishing := math.Exp(float64(logits[1] - max))
	return phishing / (legit + phishing), nil
}

// Close releases the session and its tensors
func (m *Model) Close() error {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.inputIDs != nil {
		m.inputIDs.Destroy()
	}
	if m.attentionMask != nil {
		m.attentionMask.Destroy()
	}
	if m.output != nil {
		m.output.Destroy()
	}
	return nil
}
