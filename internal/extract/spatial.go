package extract

import (
	"math"
	"strings"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

// SearchDirection says where a label's value is expected to sit.
type SearchDirection int

const (
	SearchRight SearchDirection = iota
	SearchBelow
	SearchRightThenBelow
)

// Default spatial tolerances, in pixels of image space.
const (
	DefaultMaxHorizontalGap = 160.0
	DefaultMaxVerticalGap   = 80.0
	DefaultOverlapFraction  = 0.5
)

// LabelPattern is plain immutable configuration: a label name, its trigger
// vocabulary and the geometric rules for locating its value.
type LabelPattern struct {
	Name             string
	Keywords         []string // case-insensitive, whitespace-stripped containment
	Direction        SearchDirection
	MaxHorizontalGap float64 // <= 0 means DefaultMaxHorizontalGap
	MaxVerticalGap   float64 // <= 0 means DefaultMaxVerticalGap
	OverlapFraction  float64 // <= 0 means DefaultOverlapFraction
}

// matches reports whether the line text contains any trigger keyword.
func (p LabelPattern) matches(text string) bool {
	s := squash(text)
	if s == "" {
		return false
	}
	for _, kw := range p.Keywords {
		if strings.Contains(s, squash(kw)) {
			return true
		}
	}
	return false
}

// SpatialEntity pairs a recognized label line with the value found by its
// directional search.
type SpatialEntity struct {
	Name      string
	LabelText string
	Value     string
	LabelLine geometry.TextLine
	ValueLine geometry.TextLine
}

// SpatialEntities pairs every label occurrence with a nearby value line.
// A label occurrence with no acceptable candidate emits nothing.
func SpatialEntities(lines []geometry.TextLine, labels []LabelPattern) []SpatialEntity {
	var out []SpatialEntity
	for _, p := range labels {
		for i, line := range lines {
			if !p.matches(line.Text) {
				continue
			}
			value, ok := findValue(lines, i, p)
			if !ok {
				continue
			}
			out = append(out, SpatialEntity{
				Name:      p.Name,
				LabelText: strings.TrimSpace(line.Text),
				Value:     strings.TrimSpace(value.Text),
				LabelLine: line,
				ValueLine: value,
			})
		}
	}
	return out
}

func findValue(lines []geometry.TextLine, labelIdx int, p LabelPattern) (geometry.TextLine, bool) {
	switch p.Direction {
	case SearchRight:
		return searchRight(lines, labelIdx, p)
	case SearchBelow:
		return searchBelow(lines, labelIdx, p)
	case SearchRightThenBelow:
		if v, ok := searchRight(lines, labelIdx, p); ok {
			return v, true
		}
		return searchBelow(lines, labelIdx, p)
	}
	return geometry.TextLine{}, false
}

// searchRight picks the candidate with the smallest horizontal gap among
// lines starting strictly right of the label, vertically overlapping it by
// at least OverlapFraction of the smaller height, within MaxHorizontalGap.
// A gap at or beyond the maximum is rejected.
func searchRight(lines []geometry.TextLine, labelIdx int, p LabelPattern) (geometry.TextLine, bool) {
	label := lines[labelIdx]
	maxGap := p.MaxHorizontalGap
	if maxGap <= 0 {
		maxGap = DefaultMaxHorizontalGap
	}
	frac := p.OverlapFraction
	if frac <= 0 {
		frac = DefaultOverlapFraction
	}

	best := -1
	bestGap := math.Inf(1)
	for i, c := range lines {
		if i == labelIdx || !acceptable(c, p) {
			continue
		}
		if c.Box.X1 <= label.Box.X2 {
			continue
		}
		minH := math.Min(label.Box.Height(), c.Box.Height())
		if geometry.VerticalOverlap(label.Box, c.Box) < frac*minH {
			continue
		}
		gap := c.Box.X1 - label.Box.X2
		if gap >= maxGap {
			continue
		}
		if gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		return geometry.TextLine{}, false
	}
	return lines[best], true
}

// searchBelow picks the candidate with the smallest vertical gap among lines
// starting strictly below the label that horizontally overlap a band centered
// on the label (center ± label width, with an extra half-width allowance on
// the left), within MaxVerticalGap.
func searchBelow(lines []geometry.TextLine, labelIdx int, p LabelPattern) (geometry.TextLine, bool) {
	label := lines[labelIdx]
	maxGap := p.MaxVerticalGap
	if maxGap <= 0 {
		maxGap = DefaultMaxVerticalGap
	}
	w := label.Box.Width()
	band := geometry.Rect{
		X1: label.Box.CenterX() - w - w/2,
		Y1: label.Box.Y2,
		X2: label.Box.CenterX() + w,
		Y2: math.Inf(1),
	}

	best := -1
	bestGap := math.Inf(1)
	for i, c := range lines {
		if i == labelIdx || !acceptable(c, p) {
			continue
		}
		if c.Box.Y1 <= label.Box.Y2 {
			continue
		}
		if geometry.HorizontalOverlap(band, c.Box) <= 0 {
			continue
		}
		gap := c.Box.Y1 - label.Box.Y2
		if gap >= maxGap {
			continue
		}
		if gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		return geometry.TextLine{}, false
	}
	return lines[best], true
}

// acceptable rejects empty candidates and candidates that are themselves
// label lines of the same vocabulary, so one label is never read as
// another's value.
func acceptable(c geometry.TextLine, p LabelPattern) bool {
	if strings.TrimSpace(c.Text) == "" {
		return false
	}
	return !p.matches(c.Text)
}
