package extract

import (
	"slices"

	"github.com/tidwall/rtree"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

// DefaultContainment is the minimum intersection/line-area ratio for a line
// to count as a member of a region.
const DefaultContainment = 0.3

// AssignRegions recomputes region membership: a line joins the first region,
// in detection order, whose box covers at least threshold of the line's own
// area. Region boxes are indexed in an R-tree; detection order still breaks
// ties. The input slice is not mutated.
func AssignRegions(regions []geometry.Region, lines []geometry.TextLine, threshold float64) []geometry.Region {
	if threshold <= 0 {
		threshold = DefaultContainment
	}
	out := make([]geometry.Region, len(regions))
	for i, r := range regions {
		r.Lines = nil
		out[i] = r
	}

	var tr rtree.RTreeG[int]
	for i, r := range regions {
		tr.Insert([2]float64{r.Box.X1, r.Box.Y1}, [2]float64{r.Box.X2, r.Box.Y2}, i)
	}

	for _, line := range lines {
		area := line.Box.Area()
		if area <= 0 {
			continue
		}
		var candidates []int
		tr.Search(
			[2]float64{line.Box.X1, line.Box.Y1},
			[2]float64{line.Box.X2, line.Box.Y2},
			func(_, _ [2]float64, i int) bool {
				candidates = append(candidates, i)
				return true
			},
		)
		slices.Sort(candidates) // restore detection order
		for _, i := range candidates {
			if out[i].Box.IntersectionArea(line.Box)/area >= threshold {
				out[i].Lines = append(out[i].Lines, line)
				break
			}
		}
	}
	return out
}

// FilterRegions keeps regions whose class is in the target set. Regions
// outside the set are retained for display by the caller but excluded from
// field extraction.
func FilterRegions(regions []geometry.Region, classes []string) []geometry.Region {
	var out []geometry.Region
	for _, r := range regions {
		if slices.Contains(classes, r.Class) {
			out = append(out, r)
		}
	}
	return out
}

// FindRegion returns the first region of the given class, in detection
// order, or nil.
func FindRegion(regions []geometry.Region, class string) *geometry.Region {
	for i := range regions {
		if regions[i].Class == class {
			return &regions[i]
		}
	}
	return nil
}
