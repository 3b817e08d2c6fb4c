package detect

import (
	"context"
	"fmt"
	"image"
	"log"
	"sort"
)

// MaxPromptLen is the hard per-prompt length cap, in runes. Prompts beyond it
// indicate a caller bug (the query formatter already bounds its output well
// below this), so they fail the request instead of being silently trimmed.
const MaxPromptLen = 100

// Inputs is an opaque handle to prepared model inputs. Its contents belong to
// the Processor/Model pair that produced it.
type Inputs struct {
	// Payload is backend-specific prepared data.
	Payload any

	// TargetSize is the original (pre-resize) size of the image under
	// detection; post-processing scales boxes back to it.
	TargetSize Size
}

// RawOutput is an opaque handle to one inference pass's output. The
// orchestrator caches it and feeds it to PostProcess repeatedly without ever
// re-running inference.
type RawOutput struct {
	Payload any
}

// Processor prepares model inputs and turns raw inference output into scored
// boxes. Pre- and post-processing are cheap local operations; PostProcess in
// particular must be safe to call many times against the same RawOutput.
type Processor interface {
	PrepareInputs(ctx context.Context, img image.Image, prompts []string) (*Inputs, error)
	PrepareExemplarInputs(ctx context.Context, target, exemplar image.Image) (*Inputs, error)

	// PostProcess filters the raw output at threshold and scales boxes to
	// targetSize. Returned detections satisfy the Box invariant.
	PostProcess(raw *RawOutput, threshold float64, targetSize Size) ([]Detection, error)

	// PostProcessExemplar additionally applies non-maximum suppression at
	// nmsThreshold.
	PostProcessExemplar(raw *RawOutput, scoreThreshold, nmsThreshold float64, targetSize Size) ([]Detection, error)
}

// Model runs inference. Infer is the expensive step of a request and is
// invoked exactly once per request, never retried.
type Model interface {
	Infer(ctx context.Context, in *Inputs) (*RawOutput, error)
	InferExemplar(ctx context.Context, in *Inputs) (*RawOutput, error)
}

// ValidatePrompts checks that prompts is a non-empty list of non-blank
// strings within MaxPromptLen. Violations are hard failures: the request is
// rejected without touching the model.
func ValidatePrompts(prompts []string) error {
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts given")
	}
	for i, p := range prompts {
		if p == "" {
			return fmt.Errorf("prompt %d is empty", i+1)
		}
		if n := len([]rune(p)); n > MaxPromptLen {
			return fmt.Errorf("prompt %d is %d characters, limit is %d", i+1, n, MaxPromptLen)
		}
	}
	return nil
}

// Detect runs text-guided detection with the adaptive threshold protocol:
// prepare inputs once, infer once, then walk the threshold ladder re-running
// only post-processing against the cached output. The first threshold that
// yields at least one box wins and is recorded in the result. An exhausted
// ladder is a successful empty result, not an error.
func Detect(ctx context.Context, model Model, proc Processor, img image.Image, prompts []string, baseThreshold float64) (*Result, error) {
	if err := ValidatePrompts(prompts); err != nil {
		return nil, fmt.Errorf("invalid prompts: %w", err)
	}

	inputs, err := proc.PrepareInputs(ctx, img, prompts)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare inputs: %w", err)
	}

	raw, err := model.Infer(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	ladder := NewLadder(baseThreshold)
	diag := Diagnostics{
		ImageSize:       inputs.TargetSize,
		PromptCount:     len(prompts),
		ThresholdsTried: make([]float64, 0, len(ladder)),
	}

	for _, threshold := range ladder {
		diag.ThresholdsTried = append(diag.ThresholdsTried, threshold)

		detections, err := proc.PostProcess(raw, threshold, inputs.TargetSize)
		if err != nil {
			return nil, fmt.Errorf("post-processing failed at threshold %.3f: %w", threshold, err)
		}
		if len(detections) == 0 {
			continue
		}

		if threshold != baseThreshold {
			log.Printf("detect: no boxes at base threshold %.3f, succeeded at %.3f", baseThreshold, threshold)
		}
		sortByScore(detections)
		return &Result{
			Detections:          detections,
			Found:               true,
			SuccessfulThreshold: threshold,
			Diagnostics:         diag,
		}, nil
	}

	log.Printf("detect: ladder exhausted after %d thresholds, no detections", len(diag.ThresholdsTried))
	return &Result{Diagnostics: diag}, nil
}

// DetectByExample runs image-guided detection: a single inference pass and a
// single post-processing pass at the given thresholds. There is deliberately
// no threshold ladder here; exemplar matching is a lower-precision path and
// retry amplification would mostly surface noise.
func DetectByExample(ctx context.Context, model Model, proc Processor, target, exemplar image.Image, confThreshold, nmsThreshold float64) (*Result, error) {
	inputs, err := proc.PrepareExemplarInputs(ctx, target, exemplar)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare exemplar inputs: %w", err)
	}

	raw, err := model.InferExemplar(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("exemplar inference failed: %w", err)
	}

	detections, err := proc.PostProcessExemplar(raw, confThreshold, nmsThreshold, inputs.TargetSize)
	if err != nil {
		return nil, fmt.Errorf("exemplar post-processing failed: %w", err)
	}

	diag := Diagnostics{
		ImageSize:       inputs.TargetSize,
		PromptCount:     1,
		ThresholdsTried: []float64{confThreshold},
	}
	if len(detections) == 0 {
		return &Result{Diagnostics: diag}, nil
	}

	sortByScore(detections)
	return &Result{
		Detections:          detections,
		Found:               true,
		SuccessfulThreshold: confThreshold,
		Diagnostics:         diag,
	}, nil
}

func sortByScore(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})
}
