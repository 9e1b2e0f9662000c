// Package extract implements the extraction pipeline: typed entity tagging,
// spatial label/value pairing, layout-region routing and the two domain
// extractors built on top of them.
package extract

import (
	"regexp"
	"unicode/utf8"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

// EntityType tags a regex-recognized entity inside a single line.
type EntityType string

const (
	EntityDate    EntityType = "date"
	EntityTime    EntityType = "time"
	EntityPhone   EntityType = "phone"
	EntityEmail   EntityType = "email"
	EntityAmount  EntityType = "amount"
	EntityPercent EntityType = "percent"
	EntityURL     EntityType = "url"
	EntityIP      EntityType = "ip"
)

// entityPatterns maps each type to its ordered pattern list. Every pattern
// of an enabled type is applied; order affects scan sequence only, never
// precedence.
var entityPatterns = map[EntityType][]*regexp.Regexp{
	EntityDate: {
		regexp.MustCompile(`\d{4}[-/.]\d{1,2}[-/.]\d{1,2}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{2,3}年\d{1,2}月\d{1,2}日`),
	},
	EntityTime: {
		regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`),
		regexp.MustCompile(`\d{1,2}:\d{2}`),
	},
	EntityPhone: {
		regexp.MustCompile(`09\d{2}[- ]?\d{3}[- ]?\d{3}`),
		regexp.MustCompile(`\(0\d{1,2}\)\s?\d{3,4}[- ]?\d{4}`),
		regexp.MustCompile(`0\d{1,2}-\d{6,8}`),
	},
	EntityEmail: {
		regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	},
	EntityAmount: {
		regexp.MustCompile(`(?:NT\$|TWD|[$])\s*\d+(?:,\d{3})*(?:\.\d+)?`),
		regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?`),
		regexp.MustCompile(`\d+\.\d{2}`),
	},
	EntityPercent: {
		regexp.MustCompile(`\d+(?:\.\d+)?%`),
	},
	EntityURL: {
		regexp.MustCompile(`https?://[^\s]+`),
		regexp.MustCompile(`www\.[^\s]+\.[A-Za-z]{2,}[^\s]*`),
	},
	EntityIP: {
		regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`),
	},
}

// AllEntityTypes returns every supported type in a stable order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityDate, EntityTime, EntityPhone, EntityEmail,
		EntityAmount, EntityPercent, EntityURL, EntityIP,
	}
}

// Entity is a typed match found inside one line. Box is a sub-rectangle of
// the source line, sliced rune-proportionally by character offset.
type Entity struct {
	Type  EntityType        `json:"type"`
	Value string            `json:"value"`
	Line  geometry.TextLine `json:"line"`
	Box   geometry.Rect     `json:"box"`
}

// Entities applies every enabled type's pattern list to every line.
// Unmatched text is simply ignored; there is no error condition here.
func Entities(lines []geometry.TextLine, types []EntityType) []Entity {
	var out []Entity
	for _, line := range lines {
		total := utf8.RuneCountInString(line.Text)
		if total == 0 {
			continue
		}
		for _, t := range types {
			for _, re := range entityPatterns[t] {
				for _, loc := range re.FindAllStringIndex(line.Text, -1) {
					out = append(out, Entity{
						Type:  t,
						Value: line.Text[loc[0]:loc[1]],
						Line:  line,
						Box:   sliceBox(line, loc[0], loc[1], total),
					})
				}
			}
		}
	}
	return dedupeEntities(out)
}

// sliceBox maps a byte range of the line's text onto a proportional
// sub-rectangle of its box, assuming uniform character width.
func sliceBox(line geometry.TextLine, startByte, endByte, totalRunes int) geometry.Rect {
	startRunes := utf8.RuneCountInString(line.Text[:startByte])
	endRunes := utf8.RuneCountInString(line.Text[:endByte])
	return line.Box.HSlice(
		float64(startRunes)/float64(totalRunes),
		float64(endRunes)/float64(totalRunes),
	)
}

// dedupeEntities drops later entities that repeat an earlier one's type and
// value with an overlapping box.
func dedupeEntities(entities []Entity) []Entity {
	kept := entities[:0]
	for _, e := range entities {
		dup := false
		for _, k := range kept {
			if k.Type == e.Type && k.Value == e.Value && k.Box.Overlaps(e.Box) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, e)
		}
	}
	return kept
}
