package form990

// Combine returns a+b when both are present, whichever one is present
// otherwise, and nil when both are absent.
func Combine(a, b *int64) *int64 {
	switch {
	case a != nil && b != nil:
		sum := *a + *b
		return &sum
	case a != nil:
		return a
	default:
		return b
	}
}
