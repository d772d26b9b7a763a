package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// BytesPerMebibyte converts mebibyte thresholds into byte counts.
	BytesPerMebibyte = 1024 * 1024

	decimalBase       = 1000
	humanSizeDecimals = 2
)

var decimalSizeUnits = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	units := []string{"b", "kb", "mb", "gb", "tb", "pb"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + units[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, units[unitIndex])
}

// FormatHumanSize renders bytes with decimal (SI) units rounded to two places,
// dropping trailing zeros: 10 -> "10 B", 1024 -> "1.02 kB", 1500 -> "1.5 kB".
func FormatHumanSize(bytes int64) string {
	if bytes <= 0 {
		return "0 " + decimalSizeUnits[0]
	}
	exponent := int(math.Floor(math.Log(float64(bytes)) / math.Log(decimalBase)))
	if exponent >= len(decimalSizeUnits) {
		exponent = len(decimalSizeUnits) - 1
	}
	if exponent == 0 {
		return strconv.FormatInt(bytes, 10) + " " + decimalSizeUnits[0]
	}
	scale := math.Pow(10, humanSizeDecimals)
	value := math.Round(float64(bytes)/math.Pow(decimalBase, float64(exponent))*scale) / scale
	if value >= decimalBase && exponent < len(decimalSizeUnits)-1 {
		value = 1
		exponent++
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + decimalSizeUnits[exponent]
}

// ThresholdBytes converts a threshold expressed in mebibytes into a whole number of bytes.
// Sizes are integers, so comparing against the floor keeps strict-greater semantics intact.
func ThresholdBytes(thresholdMebibytes float64) int64 {
	if thresholdMebibytes <= 0 {
		return 0
	}
	return int64(math.Floor(thresholdMebibytes * BytesPerMebibyte))
}
