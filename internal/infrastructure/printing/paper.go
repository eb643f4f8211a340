package printing

import "strings"

// PaperSize names a supported page format
type PaperSize string

// Supported paper sizes
const (
	PaperSizeA4          PaperSize = "A4"
	PaperSizeA5          PaperSize = "A5"
	PaperSizeThermal80MM PaperSize = "THERMAL_80MM"
)

// ParsePaperSize accepts any case; unknown names fall back to A5.
func ParsePaperSize(s string) PaperSize {
	p := PaperSize(strings.ToUpper(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return PaperSizeA5
}

// IsValid reports whether p is supported
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeThermal80MM:
		return true
	}
	return false
}

// Dimensions returns width and height in millimeters. Thermal rolls have no
// fixed height.
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeA5:
		return 148, 210
	case PaperSizeThermal80MM:
		return 80, 0
	}
	return 0, 0
}

// IsContinuous reports whether p is roll paper
func (p PaperSize) IsContinuous() bool {
	return p == PaperSizeThermal80MM
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left int
}

// MarginsFor returns the default margins for p
func MarginsFor(p PaperSize) Margins {
	if p.IsContinuous() {
		return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
	}
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}
