// Package ocr defines the input contracts of the two excluded collaborators:
// the character-recognition engine and the document-layout detector. The core
// never runs either model; it only consumes their serialized results.
package ocr

import (
	"encoding/json"
	"fmt"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

// Result is the recognition output for one captured frame. A non-empty Err
// is a pass-through failure string from the engine; consumers treat it as an
// empty line set.
type Result struct {
	Lines       []geometry.TextLine `json:"lines"`
	Words       []geometry.TextLine `json:"words,omitempty"`
	ImageWidth  int                 `json:"image_width"`
	ImageHeight int                 `json:"image_height"`
	Err         string              `json:"error,omitempty"`
}

// UsableLines returns the frame's lines, or nil when the engine reported an
// error. All failure downstream is data-level, never control-flow level.
func (r Result) UsableLines() []geometry.TextLine {
	if r.Err != "" {
		return nil
	}
	return r.Lines
}

// MeanConfidence is the average OCR confidence across the frame's lines.
func (r Result) MeanConfidence() float64 {
	lines := r.UsableLines()
	if len(lines) == 0 {
		return 0
	}
	var sum float64
	for _, l := range lines {
		sum += l.Confidence
	}
	return sum / float64(len(lines))
}

// Detection is one labeled region from the layout detector.
type Detection struct {
	Class string        `json:"class"`
	Score float64       `json:"score"`
	Box   geometry.Rect `json:"box"`
}

// LayoutResult is the layout detector's output for one frame. Region order
// is the detector's original ordering and is significant for membership
// tie-breaks.
type LayoutResult struct {
	Regions     []Detection `json:"regions"`
	ImageWidth  int         `json:"image_width"`
	ImageHeight int         `json:"image_height"`
}

// ToRegions converts detections into geometry regions, preserving order.
func (lr LayoutResult) ToRegions() []geometry.Region {
	regions := make([]geometry.Region, len(lr.Regions))
	for i, d := range lr.Regions {
		regions[i] = geometry.Region{Class: d.Class, Box: d.Box, Confidence: d.Score}
	}
	return regions
}

// DecodeResult parses and validates a serialized recognition result.
func DecodeResult(data []byte) (Result, error) {
	if err := ValidateJSONAgainstSchema(buildResultSchema(), data); err != nil {
		return Result{}, fmt.Errorf("ocr result: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("ocr result: %w", err)
	}
	return r, nil
}

// DecodeLayout parses and validates a serialized layout result.
func DecodeLayout(data []byte) (LayoutResult, error) {
	if err := ValidateJSONAgainstSchema(buildLayoutSchema(), data); err != nil {
		return LayoutResult{}, fmt.Errorf("layout result: %w", err)
	}
	var lr LayoutResult
	if err := json.Unmarshal(data, &lr); err != nil {
		return LayoutResult{}, fmt.Errorf("layout result: %w", err)
	}
	return lr, nil
}
