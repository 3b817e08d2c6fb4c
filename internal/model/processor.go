package model

import (
	"context"
	"fmt"
	"image"

	"github.com/owlvision/owlvision-mcp/internal/detect"
	"github.com/owlvision/owlvision-mcp/internal/imaging"
)

// Processor implements detect.Processor for the HTTP backend. Preparation
// normalizes and encodes images; post-processing is pure local math over the
// backend's normalized candidates, cheap enough to re-run per ladder step.
type Processor struct {
	// ModelName is stamped into prepared payloads.
	ModelName string

	// MaxEdge bounds the longer image edge before encoding; larger images are
	// downscaled to cut transfer and inference cost. Zero disables scaling.
	// Returned boxes are always in original-image coordinates regardless.
	MaxEdge int
}

// PrepareInputs builds the batched text-guided payload: one image paired
// with all prompts. The original image size is recorded so post-processing
// can scale boxes back to it.
func (p *Processor) PrepareInputs(ctx context.Context, img image.Image, prompts []string) (*detect.Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, encoded, err := p.normalize(img)
	if err != nil {
		return nil, err
	}

	return &detect.Inputs{
		Payload:    &inputPayload{Model: p.ModelName, Image: encoded, Prompts: prompts},
		TargetSize: target,
	}, nil
}

// PrepareExemplarInputs builds the paired-image payload for image-guided
// detection.
func (p *Processor) PrepareExemplarInputs(ctx context.Context, target, exemplar image.Image) (*detect.Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size, encoded, err := p.normalize(target)
	if err != nil {
		return nil, err
	}
	_, encodedExemplar, err := p.normalize(exemplar)
	if err != nil {
		return nil, fmt.Errorf("exemplar image: %w", err)
	}

	return &detect.Inputs{
		Payload:    &inputPayload{Model: p.ModelName, Image: encoded, QueryImage: encodedExemplar},
		TargetSize: size,
	}, nil
}

func (p *Processor) normalize(img image.Image) (detect.Size, string, error) {
	if img == nil {
		return detect.Size{}, "", fmt.Errorf("nil image")
	}

	bounds := img.Bounds()
	size := detect.Size{Width: bounds.Dx(), Height: bounds.Dy()}
	if size.Width == 0 || size.Height == 0 {
		return detect.Size{}, "", fmt.Errorf("empty image")
	}

	prepared := imaging.ToRGB(img)
	if p.MaxEdge > 0 {
		prepared = imaging.FitWithin(prepared, p.MaxEdge)
	}

	encoded, err := encodeImage(prepared)
	if err != nil {
		return detect.Size{}, "", err
	}
	return size, encoded, nil
}

// PostProcess filters the cached raw output at threshold and scales the
// surviving boxes from normalized [0,1] coordinates to targetSize. Degenerate
// boxes (zero width or height after scaling) are dropped, so every returned
// box satisfies x1<x2 and y1<y2.
func (p *Processor) PostProcess(raw *detect.RawOutput, threshold float64, targetSize detect.Size) ([]detect.Detection, error) {
	candidates, err := rawPayload(raw)
	if err != nil {
		return nil, err
	}

	var out []detect.Detection
	for _, pc := range candidates.Results {
		if len(pc.Boxes) != len(pc.Scores) {
			return nil, fmt.Errorf("prompt %d: %d boxes but %d scores", pc.PromptIndex, len(pc.Boxes), len(pc.Scores))
		}
		for i, score := range pc.Scores {
			if score < threshold {
				continue
			}
			b, ok := scaleBox(pc.Boxes[i], targetSize)
			if !ok {
				continue
			}
			out = append(out, detect.Detection{Box: b, Score: score, PromptIndex: pc.PromptIndex})
		}
	}
	return out, nil
}

// PostProcessExemplar filters at scoreThreshold, scales, then suppresses
// overlapping duplicates with greedy IoU NMS at nmsThreshold.
func (p *Processor) PostProcessExemplar(raw *detect.RawOutput, scoreThreshold, nmsThreshold float64, targetSize detect.Size) ([]detect.Detection, error) {
	detections, err := p.PostProcess(raw, scoreThreshold, targetSize)
	if err != nil {
		return nil, err
	}
	return suppressOverlaps(detections, nmsThreshold), nil
}

func rawPayload(raw *detect.RawOutput) (*rawDetections, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil raw output")
	}
	candidates, ok := raw.Payload.(*rawDetections)
	if !ok {
		return nil, fmt.Errorf("raw output was not produced by this backend")
	}
	return candidates, nil
}

// scaleBox maps a normalized box to pixel coordinates, clamped to the image.
// The second return value is false for boxes that collapse to zero area.
func scaleBox(b [4]float64, size detect.Size) (detect.Box, bool) {
	w := float64(size.Width)
	h := float64(size.Height)

	box := detect.Box{
		X1: clamp(b[0]*w, 0, w),
		Y1: clamp(b[1]*h, 0, h),
		X2: clamp(b[2]*w, 0, w),
		Y2: clamp(b[3]*h, 0, h),
	}
	return box, box.Valid()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
