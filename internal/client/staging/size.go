package staging

import (
	"math"
	"strconv"
)

var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders n bytes in the largest unit (up to GB) that keeps
// the value at least 1, rounded to two decimals: 1536 is "1.5 KB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	unit := 0
	div := int64(1)
	for unit < len(sizeUnits)-1 && n >= div*1024 {
		div *= 1024
		unit++
	}

	v := math.Round(float64(n)/float64(div)*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[unit]
}
