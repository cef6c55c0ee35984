package models

// PriceRange is a price predicate applied to catalog queries. A zero bound
// is open on that side. Inclusive reports whether the bounds include their
// endpoints (the outer budget bands are strict, the middle bands are not).
type PriceRange struct {
	Min       int64 `json:"min,omitempty"`
	Max       int64 `json:"max,omitempty"`
	Inclusive bool  `json:"inclusive"`
}

// Contains reports whether price satisfies the predicate.
func (r PriceRange) Contains(price int64) bool {
	if r.Min > 0 {
		if r.Inclusive && price < r.Min {
			return false
		}
		if !r.Inclusive && price <= r.Min {
			return false
		}
	}
	if r.Max > 0 {
		if r.Inclusive && price > r.Max {
			return false
		}
		if !r.Inclusive && price >= r.Max {
			return false
		}
	}
	return true
}
