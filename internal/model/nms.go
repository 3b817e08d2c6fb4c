package model

import (
	"sort"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

// suppressOverlaps applies greedy non-maximum suppression: detections are
// visited in descending score order, and each survivor suppresses every
// remaining box whose IoU with it exceeds nmsThreshold. A threshold >= 1
// disables suppression.
func suppressOverlaps(detections []detect.Detection, nmsThreshold float64) []detect.Detection {
	if len(detections) <= 1 || nmsThreshold >= 1 {
		return detections
	}

	ordered := make([]detect.Detection, len(detections))
	copy(ordered, detections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	suppressed := make([]bool, len(ordered))
	kept := make([]detect.Detection, 0, len(ordered))

	for i, d := range ordered {
		if suppressed[i] {
			continue
		}
		kept = append(kept, d)
		for j := i + 1; j < len(ordered); j++ {
			if suppressed[j] {
				continue
			}
			if iou(d.Box, ordered[j].Box) > nmsThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// iou computes intersection-over-union of two boxes.
func iou(a, b detect.Box) float64 {
	ix1 := max(a.X1, b.X1)
	iy1 := max(a.Y1, b.Y1)
	ix2 := min(a.X2, b.X2)
	iy2 := min(a.Y2, b.Y2)

	if ix1 >= ix2 || iy1 >= iy2 {
		return 0
	}

	inter := (ix2 - ix1) * (iy2 - iy1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
