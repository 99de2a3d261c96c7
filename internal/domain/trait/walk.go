package trait

// Walk visits rows depth first in forest order. Returning false from fn
// skips that row's children.
func Walk(rows []*Row, fn func(*Row) bool) {
	for _, r := range rows {
		if fn(r) {
			Walk(r.Children, fn)
		}
	}
}

// Leaves calls fn for every non-container row
func Leaves(rows []*Row, fn func(*Row)) {
	Walk(rows, func(r *Row) bool {
		if !r.IsContainer() {
			fn(r)
		}
		return true
	})
}
