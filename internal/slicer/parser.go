package slicer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regex extraction from slicer console output and G-code comments is
// inherently fragile, so every pattern lives here behind small, individually
// tested functions. Output-format drift in the slicer should only ever
// require touching this file.
var (
	// "; total filament used [g] = 12.34" in a G-code comment line.
	weightPattern = regexp.MustCompile(`(?im)(?:;|^)\s*total filament used\s*\[g\]\s*=\s*(\d+\.?\d*)`)

	// "; estimated printing time (normal mode) = 2h 15m 30s" in a G-code
	// comment line. All components optional.
	gcodeTimePattern = regexp.MustCompile(`(?im)(?:;|^)\s*estimated printing time.*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s\s*)?$`)

	// Looser variant for the console output, where the line layout differs.
	outputTimePattern = regexp.MustCompile(`(?i)estimated printing time\D*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s\s*)?`)

	// "size (mm): 10.00 x 20.00 x 30.00" in the console output.
	sizePattern = regexp.MustCompile(`(?im)size\s*\(mm\):\s*(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*x\s*(\d+\.?\d*)`)
)

// ParseWeight extracts the total filament weight in grams from G-code
// comments. The second return reports whether the marker was found at all,
// letting the caller distinguish a genuine zero from a missing marker.
func ParseWeight(gcode string) (float64, bool) {
	m := weightPattern.FindStringSubmatch(gcode)
	if m == nil {
		return 0, false
	}

	weight, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return weight, true
}

// ParseDuration extracts the estimated print time from G-code comments,
// formatted as e.g. "2h 15m" or "45m 30s". At least one component must be
// non-zero; otherwise ok is false.
func ParseDuration(gcode string) (string, bool) {
	return formatDuration(gcodeTimePattern.FindStringSubmatch(gcode))
}

// ParseDurationFromOutput is the fallback extraction from the slicer's
// console output, used when the G-code carries no time comment.
func ParseDurationFromOutput(output string) (string, bool) {
	return formatDuration(outputTimePattern.FindStringSubmatch(output))
}

// ParseDimensions extracts the bounding-box size from the console output as
// an "X x Y x Z" string with two decimal places.
func ParseDimensions(output string) (string, bool) {
	m := sizePattern.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}

	dims := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return "", false
		}
		dims[i] = v
	}

	return fmt.Sprintf("%.2f x %.2f x %.2f", dims[0], dims[1], dims[2]), true
}

func formatDuration(m []string) (string, bool) {
	if m == nil {
		return "", false
	}

	h := atoiDefault(m[1])
	min := atoiDefault(m[2])
	s := atoiDefault(m[3])
	if h == 0 && min == 0 && s == 0 {
		return "", false
	}

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if min > 0 {
		parts = append(parts, fmt.Sprintf("%dm", min))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}

	return strings.Join(parts, " "), true
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
