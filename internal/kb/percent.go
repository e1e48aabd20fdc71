package kb

// RoundPercent returns round(100*part/total) with halves rounded up, using
// integer arithmetic only. total must be positive.
func RoundPercent(part, total int) int {
	if total <= 0 {
		panic("kb: RoundPercent with non-positive total")
	}
	return (200*part + total) / (2 * total)
}
