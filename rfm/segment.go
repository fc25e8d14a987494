package rfm

// Classify maps a score triple to its segment. The rules are evaluated in
// order and the first match wins: a 5/5/5 entity is a Champion, not a Loyal
// Customer, even though it satisfies both conditions. Every triple maps to
// exactly one segment; Others is the catch-all.
func Classify(r, f, m int) Segment {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case f >= 4 && m >= 4:
		return SegmentLoyalCustomers
	case r >= 4:
		return SegmentRecentCustomers
	case r <= 2 && f >= 3:
		return SegmentAtRisk
	default:
		return SegmentOthers
	}
}
