// Package formatting converts byte sizes between counts and human-readable
// strings such as "256KB" or "1.5 MB".
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// units run from bytes to exabytes; larger units overflow int64.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n using base-1024 units with the given number of
// decimal places. Negative precision is treated as zero. Counts below one
// kilobyte, zero included, are whole bytes and carry no decimals.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)
	if n > -1024 && n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := math.Abs(float64(n))
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if n < 0 {
		size = -size
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses a size such as "50MB", "1.5 gb" or "512" into a byte
// count. Units are base-1024 and case-insensitive; IEC spellings like "MiB"
// are accepted. A bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp, err := unitExponent(unit)
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(1024, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return int64(bytes), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	if len(u) == 3 && u[1] == 'I' {
		u = u[:1] + u[2:]
	}
	for i, known := range units {
		if u == known {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
