package uploader

import "fmt"

var byteUnits = []string{"bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders a byte count for humans: "512 bytes", "1.5 MB".
func FormatBytes(n int64) string {
	v := float64(n)
	if v < 0 {
		v = 0
	}
	l := 0
	for v >= 1024 && l < len(byteUnits)-1 {
		v /= 1024
		l++
	}
	if v < 10 && l > 0 {
		return fmt.Sprintf("%.1f %s", v, byteUnits[l])
	}
	return fmt.Sprintf("%.0f %s", v, byteUnits[l])
}
