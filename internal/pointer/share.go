package pointer

// SharePointers reports whether a and b have at least one pointer ID in
// common. Gesture arbitration uses it to detect two recognizers contending for
// the same contact.
func SharePointers(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[int]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := seen[id]; ok {
			return true
		}
	}
	return false
}
