package detect

// Box is an axis-aligned bounding box in original-image pixel coordinates.
// Invariant: X1 < X2 and Y1 < Y2.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Valid reports whether the box satisfies the coordinate invariant.
func (b Box) Valid() bool { return b.X1 < b.X2 && b.Y1 < b.Y2 }

// Detection is a single scored box. PromptIndex identifies which prompt
// produced it; for image-guided detection it is always 0 and carries no
// semantic meaning.
type Detection struct {
	Box         Box     `json:"box"`
	Score       float64 `json:"score"`
	PromptIndex int     `json:"prompt_index"`
}

// Size is an image size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Diagnostics carries context about how a detection request went, for the
// caller to present. It is always populated, and is the main aid the user
// gets when a request comes back empty.
type Diagnostics struct {
	ImageSize       Size      `json:"image_size"`
	PromptCount     int       `json:"prompt_count"`
	ThresholdsTried []float64 `json:"thresholds_tried"`
}

// Result is the outcome of a detection request. An exhausted threshold
// ladder is not an error: Found is false, Detections is empty, and
// Diagnostics explains what was tried.
type Result struct {
	// Detections holds the surviving boxes, ordered by descending score.
	Detections []Detection `json:"detections"`

	// Found reports whether at least one detection survived.
	Found bool `json:"found"`

	// SuccessfulThreshold is the ladder step that produced the detections.
	// Zero when Found is false.
	SuccessfulThreshold float64 `json:"successful_threshold,omitempty"`

	Diagnostics Diagnostics `json:"diagnostics"`
}
