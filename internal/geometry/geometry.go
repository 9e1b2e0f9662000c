// Package geometry holds the primitives shared by every extraction stage:
// axis-aligned boxes in image-pixel space, OCR text lines and detected
// layout regions.
package geometry

import "math"

// Rect is an axis-aligned box with X2 >= X1 and Y2 >= Y1.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (r Rect) Width() float64  { return r.X2 - r.X1 }
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

func (r Rect) CenterX() float64 { return (r.X1 + r.X2) / 2 }
func (r Rect) CenterY() float64 { return (r.Y1 + r.Y2) / 2 }

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// IntersectionArea is the area shared by r and o, zero when disjoint.
func (r Rect) IntersectionArea(o Rect) float64 {
	w := math.Min(r.X2, o.X2) - math.Max(r.X1, o.X1)
	h := math.Min(r.Y2, o.Y2) - math.Max(r.Y1, o.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Overlaps reports a non-empty intersection in both axes.
func (r Rect) Overlaps(o Rect) bool {
	return r.X1 < o.X2 && o.X1 < r.X2 && r.Y1 < o.Y2 && o.Y1 < r.Y2
}

// VerticalOverlap is the length of the shared Y span, zero when disjoint.
func VerticalOverlap(a, b Rect) float64 {
	v := math.Min(a.Y2, b.Y2) - math.Max(a.Y1, b.Y1)
	if v < 0 {
		return 0
	}
	return v
}

// HorizontalOverlap is the length of the shared X span, zero when disjoint.
func HorizontalOverlap(a, b Rect) float64 {
	h := math.Min(a.X2, b.X2) - math.Max(a.X1, b.X1)
	if h < 0 {
		return 0
	}
	return h
}

// HSlice returns the horizontal sub-rectangle covering [startFrac, endFrac]
// of r's width. Fractions are clamped to [0, 1].
func (r Rect) HSlice(startFrac, endFrac float64) Rect {
	startFrac = clamp01(startFrac)
	endFrac = clamp01(endFrac)
	if endFrac < startFrac {
		startFrac, endFrac = endFrac, startFrac
	}
	w := r.Width()
	return Rect{
		X1: r.X1 + w*startFrac,
		Y1: r.Y1,
		X2: r.X1 + w*endFrac,
		Y2: r.Y2,
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// TextLine is a single recognized line as produced by the OCR collaborator.
// Immutable once produced.
type TextLine struct {
	Box        Rect    `json:"box"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Region is a detected document-layout region. Lines is derived membership
// and may be recomputed by any consumer.
type Region struct {
	Class      string     `json:"class"`
	Box        Rect       `json:"box"`
	Confidence float64    `json:"confidence"`
	Lines      []TextLine `json:"lines,omitempty"`
}
