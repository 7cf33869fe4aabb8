// Package sizing
package sizing

// Split carves total into visible-sized slices; the last slice takes
// whatever remains. It returns nil when total or visible is not positive.
func Split(total, visible int64) []int64 {
	if total <= 0 || visible <= 0 {
		return nil
	}
	slices := make([]int64, 0, (total+visible-1)/visible)
	for remaining := total; remaining > 0; {
		slice := min(visible, remaining)
		slices = append(slices, slice)
		remaining -= slice
	}
	return slices
}
