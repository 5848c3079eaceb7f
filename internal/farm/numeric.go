package farm

import (
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseLeadingNumber reads the numeric prefix of values such as "10 kg" or
// "2.5 acres". Text without a numeric prefix yields 0 rather than an error;
// totals built from such records are understated, not rejected.
func ParseLeadingNumber(raw string) float64 {
	token := leadingNumber.FindString(strings.TrimSpace(raw))
	if token == "" {
		return 0
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return v
}
