package constants

// Region class labels emitted by the layout detector.
const (
	RegionTable  = "table"
	RegionText   = "text"
	RegionTitle  = "title"
	RegionFigure = "figure"
	RegionSeal   = "seal"
)

// ExtractableRegionClasses are the classes field extraction may read from;
// everything else is retained for display only.
var ExtractableRegionClasses = []string{RegionTable, RegionText}
